package model

import (
	"strings"
	"time"
)

type Patient struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	DateOfBirth    *time.Time `json:"date_of_birth"` // может быть nil
	Address        string     `json:"address"`
	TelegramChatID int64      `json:"telegram_chat_id"` // 0 - не привязан
	CreatedAt      time.Time  `json:"created_at"`
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// HasTelegram reports whether notifications can be delivered over Telegram.
func (p *Patient) HasTelegram() bool {
	return p.TelegramChatID != 0
}

func (p *Patient) Clone() *Patient {
	if p == nil {
		return nil
	}
	cp := *p
	if p.DateOfBirth != nil {
		dob := *p.DateOfBirth
		cp.DateOfBirth = &dob
	}
	return &cp
}

package handlers

import (
	"errors"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
)

const genericError = "❌ Something went wrong. Please try again later."

// ErrorMessage возвращает пользовательское сообщение для ошибки.
// Сообщения доменных ошибок показываются как есть, они уже называют ID.
func ErrorMessage(err error) string {
	var domainErr *model.Error
	if !errors.As(err, &domainErr) {
		return genericError
	}

	switch domainErr.Kind {
	case model.KindNotFound:
		return "🔍 " + domainErr.Message
	case model.KindSlotUnavailable:
		return "⛔ " + domainErr.Message
	case model.KindConflict:
		return "⚠️ " + domainErr.Message
	case model.KindInvalidTransition:
		return "🚫 " + domainErr.Message
	default:
		return "❌ " + domainErr.Message
	}
}

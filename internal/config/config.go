package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/timeslot"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Environment string
	LogLevel    string

	StorageDriver string
	DBDSN         string
	AutoMigrate   bool

	HTTPAddr      string
	TelegramToken string
	// StaffChatIDs чаты персонала клиники: /complete, /noshow и доступ к чужим записям
	StaffChatIDs []int64

	Redis RedisConfig

	LockTTL              time.Duration
	BusinessHours        timeslot.BusinessHours
	EnforceBusinessHours bool
	ReminderInterval     time.Duration
	NotifyBreakerTimeout time.Duration
}

// RedisConfig пустой Addr означает локальные блокировки в процессе
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func Load() (*Config, error) {
	// .env необязателен, переменные окружения имеют приоритет
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Environment:   v.GetString("ENV"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		StorageDriver: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		DBDSN:         v.GetString("DB_DSN"),
		AutoMigrate:   v.GetBool("AUTO_MIGRATE"),
		HTTPAddr:      v.GetString("HTTP_ADDR"),
		TelegramToken: v.GetString("TELEGRAM_TOKEN"),
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		LockTTL:              v.GetDuration("LOCK_TTL"),
		EnforceBusinessHours: v.GetBool("ENFORCE_BUSINESS_HOURS"),
		ReminderInterval:     v.GetDuration("REMINDER_INTERVAL"),
		NotifyBreakerTimeout: v.GetDuration("NOTIFY_BREAKER_TIMEOUT"),
	}

	staff, err := parseChatIDs(v.GetString("STAFF_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("STAFF_CHAT_IDS: %w", err)
	}
	cfg.StaffChatIDs = staff

	hours, err := timeslot.ParseBusinessHours(v.GetString("BUSINESS_HOURS_START"), v.GetString("BUSINESS_HOURS_END"))
	if err != nil {
		return nil, fmt.Errorf("business hours: %w", err)
	}
	cfg.BusinessHours = hours

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want %s or %s)", c.StorageDriver, StoragePostgres, StorageMemory)
	}

	if c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive, got %s", c.LockTTL)
	}
	if c.ReminderInterval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive, got %s", c.ReminderInterval)
	}
	return nil
}

// parseChatIDs разбирает список через запятую или пробел
func parseChatIDs(raw string) ([]int64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid chat ID %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCK_TTL", "10s")
	v.SetDefault("BUSINESS_HOURS_START", "08:00")
	v.SetDefault("BUSINESS_HOURS_END", "18:00")
	v.SetDefault("ENFORCE_BUSINESS_HOURS", false)
	v.SetDefault("REMINDER_INTERVAL", "24h")
	v.SetDefault("NOTIFY_BREAKER_TIMEOUT", "30s")
}

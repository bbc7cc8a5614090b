package config

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"tagger-bot/internal/domain/entity"
)

type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN" validate:"required"`

	TaggerModel              string        `env:"TAGGER_MODEL,default=SmilingWolf/wd-swinv2-tagger-v3" validate:"tagger_model"`
	TaggerGeneralThreshold   float64       `env:"TAGGER_GENERAL_THRESHOLD,default=0.35" validate:"min=0,max=1"`
	TaggerGeneralMCut        bool          `env:"TAGGER_GENERAL_MCUT"`
	TaggerCharacterThreshold float64       `env:"TAGGER_CHARACTER_THRESHOLD,default=0.85" validate:"min=0,max=1"`
	TaggerCharacterMCut      bool          `env:"TAGGER_CHARACTER_MCUT"`
	TaggerHistory            bool          `env:"TAGGER_HISTORY"`
	TaggerEndpoint           string        `env:"TAGGER_ENDPOINT,default=https://smilingwolf-wd-tagger.hf.space" validate:"required,url"`
	TaggerHTTPTimeout        time.Duration `env:"TAGGER_HTTP_TIMEOUT,default=60s" validate:"gt=0"`
	TaggerEventLine          int           `env:"TAGGER_EVENT_LINE,default=4" validate:"min=-1"`
	TaggerEventPrefix        string        `env:"TAGGER_EVENT_PREFIX,default=data:"`
	TaggerMinImageSide       int           `env:"TAGGER_MIN_IMAGE_SIDE,default=0" validate:"min=0"`

	PromptTimeout time.Duration `env:"PROMPT_TIMEOUT,default=30s" validate:"gt=0"`

	HistoryBackend string `env:"HISTORY_BACKEND,default=memory" validate:"oneof=memory sqlite mysql postgres badger"`
	HistoryDSN     string `env:"HISTORY_DSN,default=tagger.db"`

	LogLevel    string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	LogFormat   string `env:"LOG_FORMAT,default=json" validate:"oneof=json console"`
	MetricsAddr string `env:"METRICS_ADDR"`
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := env.UnmarshalFromEnviron(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет значения после загрузки
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("tagger_model", func(fl validator.FieldLevel) bool {
		return entity.Model(fl.Field().String()).Valid()
	}); err != nil {
		return fmt.Errorf("register validation: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Settings настройки тэггера для сервиса распознавания
func (c *Config) Settings() entity.TaggerSettings {
	return entity.TaggerSettings{
		Model: entity.Model(c.TaggerModel),
		General: entity.Thresholds{
			Threshold: c.TaggerGeneralThreshold,
			UseMCut:   c.TaggerGeneralMCut,
		},
		Character: entity.Thresholds{
			Threshold: c.TaggerCharacterThreshold,
			UseMCut:   c.TaggerCharacterMCut,
		},
	}
}

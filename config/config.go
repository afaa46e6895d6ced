package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"spot-counter/internal/domain/entity"
)

const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

type Config struct {
	InputDir          string   `yaml:"input_dir"`
	OutputDir         string   `yaml:"output_dir"`
	TimestampedOutput bool     `yaml:"timestamped_output"`
	Extensions        []string `yaml:"extensions,flow"`
	Backend           string   `yaml:"backend"`
	LogLevel          string   `yaml:"log_level"`
	LogPretty         bool     `yaml:"log_pretty"`

	Detection entity.DetectionParams `yaml:"detection"`

	// токен читается только из окружения, в файл не пишется
	TelegramToken  string `yaml:"-"`
	TelegramChatID int64  `yaml:"telegram_chat_id,omitempty"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		InputDir:          "input",
		OutputDir:         "output",
		TimestampedOutput: true,
		Extensions:        append([]string(nil), entity.DefaultExtensions...),
		Backend:           BackendNative,
		LogLevel:          "info",
		LogPretty:         true,
		Detection:         entity.DefaultDetectionParams(),
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML-файл
// (если path не пуст), затем переменные окружения и .env.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Detection.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SPOT_INPUT_DIR"); v != "" {
		c.InputDir = v
	}
	if v := os.Getenv("SPOT_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("SPOT_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	return nil
}

// Validate проверяет конфигурацию целиком
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendNative, BackendOpenCV:
	default:
		return fmt.Errorf("unknown backend %q, expected %q or %q", c.Backend, BackendNative, BackendOpenCV)
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("input_dir and output_dir are required")
	}
	if len(c.Extensions) == 0 {
		return errors.New("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	return c.Detection.Validate()
}

// NotifyEnabled сообщает, настроена ли отправка итогов в Telegram
func (c *Config) NotifyEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Save записывает конфигурацию в YAML, удобно для создания шаблона
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"spot-counter/internal/domain/entity"
)

// clearEnv изолирует тест от окружения и .env в рабочем каталоге
func clearEnv(t *testing.T) {
	for _, key := range []string{"SPOT_INPUT_DIR", "SPOT_OUTPUT_DIR", "SPOT_BACKEND", "LOG_LEVEL", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(key, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.False(t, cfg.NotifyEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "spot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input_dir: data/raw
timestamped_output: false
detection:
  channel: Green
  blur_kernel: 4
  clahe_grid: [4, 6]
  ambient_scale: 2.5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "data/raw", cfg.InputDir)
	require.Equal(t, "output", cfg.OutputDir)
	require.False(t, cfg.TimestampedOutput)
	require.Equal(t, entity.ChannelGreen, cfg.Detection.Channel)
	require.Equal(t, 5, cfg.Detection.BlurKernel)
	require.Equal(t, []int{4, 6}, cfg.Detection.ClaheGrid)
	require.Equal(t, 2.5, cfg.Detection.AmbientScale)
	// не указанные в файле поля остаются по умолчанию
	require.Equal(t, 25.0, cfg.Detection.ContrastThreshold)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOT_INPUT_DIR", "/mnt/scans")
	t.Setenv("SPOT_BACKEND", "opencv")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/mnt/scans", cfg.InputDir)
	require.Equal(t, BackendOpenCV, cfg.Backend)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, int64(-100200), cfg.TelegramChatID)
	require.True(t, cfg.NotifyEnabled())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("SPOT_OUTPUT_DIR=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SPOT_OUTPUT_DIR") })
	// godotenv не перезаписывает уже заданные переменные
	os.Unsetenv("SPOT_OUTPUT_DIR")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.OutputDir)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("detection: [oops"), 0o644))
	_, err = Load(broken)
	require.Error(t, err)

	badScale := filepath.Join(dir, "scale.yaml")
	require.NoError(t, os.WriteFile(badScale, []byte("detection:\n  ambient_scale: 0.8\n"), 0o644))
	_, err = Load(badScale)
	require.True(t, errors.Is(err, entity.ErrInvalidParams))

	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	_, err = Load("")
	require.ErrorContains(t, err, "TELEGRAM_CHAT_ID")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "cuda" }},
		{"empty input", func(c *Config) { c.InputDir = "" }},
		{"no extensions", func(c *Config) { c.Extensions = nil }},
		{"extension without dot", func(c *Config) { c.Extensions = []string{"png"} }},
		{"bad channel", func(c *Config) { c.Detection.Channel = "alpha" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "out.yaml")

	cfg := Default()
	cfg.TelegramToken = "secret"
	cfg.Detection.RelThreshold = 0.4
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "secret")
	require.Contains(t, string(data), "min_distance_between_spots: 8")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.4, loaded.Detection.RelThreshold)
	require.Empty(t, loaded.TelegramToken)
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Dosada05/tennis-tournament/scoring"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	defaultRulesFile = "rules.yaml"
)

// R2Config описывает бакет Cloudflare R2 для экспорта архивов.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Enabled reports whether archive export is configured.
func (c R2Config) Enabled() bool {
	return c.AccountID != ""
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	StorageDriver      string
	DatabaseURL        string
	ServerPort         int
	RedisURL           string
	CORSAllowedOrigins []string
	R2                 R2Config
	LogLevel           slog.Level
	GamesToWin         int
}

// rulesFile is the on-disk match format.
type rulesFile struct {
	GamesToWin int `yaml:"games_to_win"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StorageDriver: strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER"))),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
	}

	if cfg.StorageDriver == "" {
		cfg.StorageDriver = StorageDriverPostgres
	}
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (expected %s or %s)", cfg.StorageDriver, StorageDriverPostgres, StorageDriverMemory)
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.R2, err = loadR2(); err != nil {
		return nil, err
	}

	if err = cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "INFO"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	if cfg.GamesToWin, err = loadGamesToWin(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadR2 требует либо все переменные R2, либо ни одной.
func loadR2() (R2Config, error) {
	c := R2Config{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	values := []string{c.AccountID, c.AccessKeyID, c.SecretAccessKey, c.BucketName, c.PublicBaseURL}
	set := 0
	for _, v := range values {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(values) {
		return R2Config{}, errors.New("R2 configuration is incomplete: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_BASE_URL or none")
	}
	return c, nil
}

func loadGamesToWin() (int, error) {
	gamesToWin := scoring.DefaultGamesToWin

	path := os.Getenv("RULES_FILE")
	explicit := path != ""
	if !explicit {
		path = defaultRulesFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var rules rulesFile
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return 0, fmt.Errorf("parse rules file %s: %w", path, err)
		}
		if rules.GamesToWin < 0 {
			return 0, fmt.Errorf("rules file %s: games_to_win must be positive, got %d", path, rules.GamesToWin)
		}
		if rules.GamesToWin > 0 {
			gamesToWin = rules.GamesToWin
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// файла правил по умолчанию может не быть
	default:
		return 0, fmt.Errorf("read rules file %s: %w", path, err)
	}

	if raw := os.Getenv("GAMES_TO_WIN"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("GAMES_TO_WIN must be a positive integer, got %q", raw)
		}
		gamesToWin = n
	}
	return gamesToWin, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultAPIBaseURL используется, если адрес REST API не задан.
const DefaultAPIBaseURL = "http://localhost:8000/api"

// Config содержит настройки веб-приложения и бота.
type Config struct {
	APIBaseURL    string        `yaml:"api_base_url"`
	WebPort       string        `yaml:"web_port"`
	BotToken      string        `yaml:"bot_token"`
	BotDebug      bool          `yaml:"bot_debug"`
	SessionDriver string        `yaml:"session_driver"` // sqlite или postgres
	SessionDSN    string        `yaml:"session_dsn"`
	MemcachedHost string        `yaml:"memcached_host"` // пусто - только локальный кэш
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	PaymentDelay  time.Duration `yaml:"payment_delay"`
	CSRFKey       string        `yaml:"csrf_key"`
	CookieSecure  bool          `yaml:"cookie_secure"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	return &Config{
		APIBaseURL:    DefaultAPIBaseURL,
		WebPort:       "8080",
		SessionDriver: "sqlite",
		SessionDSN:    "sessions.db",
		CacheTTL:      5 * time.Minute,
		PaymentDelay:  2 * time.Second,
	}
}

// Load читает .env (если есть), затем YAML-файл из CONFIG_FILE (если задан),
// затем переменные окружения. Переменные окружения имеют наивысший приоритет.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: не удалось прочитать .env: %v", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("некорректный файл конфигурации %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	// REACT_APP_API_BASE_URL оставлен для совместимости со старыми .env фронтенда
	c.APIBaseURL = getEnv("API_BASE_URL", getEnv("REACT_APP_API_BASE_URL", c.APIBaseURL))
	c.WebPort = getEnv("WEB_PORT", c.WebPort)
	c.BotToken = getEnv("BOT_TOKEN", c.BotToken)
	c.BotDebug = getEnvAsBool("BOT_DEBUG", c.BotDebug)
	c.SessionDriver = getEnv("SESSION_DRIVER", c.SessionDriver)
	c.SessionDSN = getEnv("SESSION_DSN", c.SessionDSN)
	c.MemcachedHost = getEnv("MEMCACHED_HOST", c.MemcachedHost)
	c.CacheTTL = getEnvAsDuration("CACHE_TTL", c.CacheTTL)
	c.PaymentDelay = getEnvAsDuration("PAYMENT_DELAY", c.PaymentDelay)
	c.CSRFKey = getEnv("CSRF_KEY", c.CSRFKey)
	c.CookieSecure = getEnvAsBool("COOKIE_SECURE", c.CookieSecure)
}

// getEnv возвращает значение переменной окружения или значение по умолчанию.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

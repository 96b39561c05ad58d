package Config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Email    EmailConfig
	Report   ReportConfig
	Log      LogConfig
	Cron     CronConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver       string
	Path         string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	TrialDays int
	OTPTTL    time.Duration
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	TLSEnabled bool
}

// Configured reports whether enough SMTP settings exist to send mail.
func (e EmailConfig) Configured() bool {
	return e.SMTPServer != "" && e.FromEmail != ""
}

type ReportConfig struct {
	MaxRows int
}

type LogConfig struct {
	Level string
	File  bool
}

type CronConfig struct {
	Enabled bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "3000")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_FILE", true)
		viper.SetDefault("DB_DRIVER", "sqlite")
		viper.SetDefault("DB_PATH", "database.db")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "")
		viper.SetDefault("DB_USER", "")
		viper.SetDefault("DB_PASSWORD", "")
		viper.SetDefault("DB_NAME", "truck_manager")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
		viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
		viper.SetDefault("JWT_SECRET", "secret")
		viper.SetDefault("JWT_TTL_HOURS", 168)
		viper.SetDefault("TRIAL_DAYS", 7)
		viper.SetDefault("OTP_TTL_MINUTES", 10)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("SMTP_PORT", 587)
		viper.SetDefault("SMTP_FROM_NAME", "Smart Truck Manager")
		viper.SetDefault("SMTP_TLS", false)
		viper.SetDefault("REPORT_MAX_ROWS", 20000)
		viper.SetDefault("CRON_ENABLED", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Driver:       viper.GetString("DB_DRIVER"),
				Path:         viper.GetString("DB_PATH"),
				Host:         viper.GetString("DB_HOST"),
				Port:         viper.GetString("DB_PORT"),
				User:         viper.GetString("DB_USER"),
				Password:     viper.GetString("DB_PASSWORD"),
				Name:         viper.GetString("DB_NAME"),
				SSLMode:      viper.GetString("DB_SSLMODE"),
				MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
				MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			},
			Auth: AuthConfig{
				JWTSecret: viper.GetString("JWT_SECRET"),
				TokenTTL:  time.Duration(viper.GetInt("JWT_TTL_HOURS")) * time.Hour,
				TrialDays: viper.GetInt("TRIAL_DAYS"),
				OTPTTL:    time.Duration(viper.GetInt("OTP_TTL_MINUTES")) * time.Minute,
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
			},
			Email: EmailConfig{
				SMTPServer: viper.GetString("SMTP_SERVER"),
				SMTPPort:   viper.GetInt("SMTP_PORT"),
				Username:   viper.GetString("SMTP_USERNAME"),
				Password:   viper.GetString("SMTP_PASSWORD"),
				FromEmail:  viper.GetString("SMTP_FROM_EMAIL"),
				FromName:   viper.GetString("SMTP_FROM_NAME"),
				TLSEnabled: viper.GetBool("SMTP_TLS"),
			},
			Report: ReportConfig{
				MaxRows: viper.GetInt("REPORT_MAX_ROWS"),
			},
			Log: LogConfig{
				Level: viper.GetString("LOG_LEVEL"),
				File:  viper.GetBool("LOG_FILE"),
			},
			Cron: CronConfig{
				Enabled: viper.GetBool("CRON_ENABLED"),
			},
		}

		if instance.Log.File {
			ensureDir("logs")
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}

package middleware

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vishwajeetguru/smart-truck-manager/Logger"
)

// LogConfig holds configuration for the logging middleware
type LogConfig struct {
	// Log every request through the global logger
	Console bool
	// Also append JSON lines to LogFilePath
	File        bool
	LogFilePath string
	// Skip logging for specific paths
	SkipPaths []string
}

// LogData contains all the information that will be logged
type LogData struct {
	Timestamp     time.Time
	Method        string
	Path          string
	Status        int
	Latency       time.Duration
	IP            string
	UserAgent     string
	RequestID     string
	OwnerID       string
	Error         string
	ContentLength int
}

// DefaultLogConfig returns a default configuration for the logging middleware
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Console:     true,
		File:        true,
		LogFilePath: "logs/requests.log",
		SkipPaths:   []string{"/health"},
	}
}

// LoggingMiddleware creates a new logging middleware with the given configuration
func LoggingMiddleware(config ...LogConfig) fiber.Handler {
	cfg := DefaultLogConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	var fileLog *zerolog.Logger
	if cfg.File {
		if l, err := openLogFile(cfg.LogFilePath); err != nil {
			Logger.Log.Error().Err(err).Str("path", cfg.LogFilePath).Msg("request log file disabled")
		} else {
			fileLog = l
		}
	}

	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *fiber.Ctx) error {
		if skip[c.Path()] {
			return c.Next()
		}

		start := time.Now()
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, requestID)

		err := c.Next()

		data := LogData{
			Timestamp:     start,
			Method:        c.Method(),
			Path:          c.Path(),
			Status:        c.Response().StatusCode(),
			Latency:       time.Since(start),
			IP:            c.IP(),
			UserAgent:     c.Get(fiber.HeaderUserAgent),
			RequestID:     requestID,
			ContentLength: len(c.Response().Body()),
		}
		if profile, ok := CurrentProfile(c); ok {
			data.OwnerID = profile.ID
		}
		if err != nil {
			data.Error = err.Error()
			var fe *fiber.Error
			if errors.As(err, &fe) {
				data.Status = fe.Code
			}
		}

		if cfg.Console {
			data.write(level(Logger.Log, data.Status))
		}
		if fileLog != nil {
			data.write(fileLog.Log())
		}
		return err
	}
}

func openLogFile(path string) (*zerolog.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	l := zerolog.New(f)
	return &l, nil
}

func level(l zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= fiber.StatusInternalServerError:
		return l.Error()
	case status >= fiber.StatusBadRequest:
		return l.Warn()
	default:
		return l.Info()
	}
}

func (d LogData) write(e *zerolog.Event) {
	e = e.Time("timestamp", d.Timestamp).
		Str("method", d.Method).
		Str("path", d.Path).
		Int("status", d.Status).
		Dur("latency", d.Latency).
		Str("ip", d.IP).
		Str("user_agent", d.UserAgent).
		Str("request_id", d.RequestID).
		Int("content_length", d.ContentLength)
	if d.OwnerID != "" {
		e = e.Str("owner_id", d.OwnerID)
	}
	if d.Error != "" {
		e = e.Str("error", d.Error)
	}
	e.Msg("request")
}

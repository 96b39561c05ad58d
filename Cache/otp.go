// Package Cache keeps short-lived one-time passwords.
package Cache

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vishwajeetguru/smart-truck-manager/Config"
	"github.com/vishwajeetguru/smart-truck-manager/Logger"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"gorm.io/gorm"
)

var ErrOTPNotFound = errors.New("otp not found or expired")

// OTPStore saves one code per email. Verify consumes the code on success.
type OTPStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string) error
}

// NewOTPStore uses redis when caching is enabled and reachable, the database otherwise.
func NewOTPStore(cfg Config.CacheConfig, db *gorm.DB) OTPStore {
	if !cfg.Enabled {
		return NewDBOTPStore(db)
	}
	client, err := newRedisClient(cfg)
	if err != nil {
		Logger.Log.Warn().Err(err).Msg("redis unavailable, keeping OTP codes in the database")
		return NewDBOTPStore(db)
	}
	Logger.Log.Info().Msg("OTP codes stored in redis")
	return NewRedisOTPStore(client)
}

// GenerateCode returns a random 6 digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sameCode(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type redisOTPStore struct {
	client *redis.Client
}

func NewRedisOTPStore(client *redis.Client) OTPStore {
	return &redisOTPStore{client: client}
}

func redisKey(email string) string {
	return "otp:" + normalizeEmail(email)
}

func (s *redisOTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("redis set otp: %w", err)
	}
	return nil
}

func (s *redisOTPStore) Verify(ctx context.Context, email, code string) error {
	stored, err := s.client.Get(ctx, redisKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("redis get otp: %w", err)
	}
	if !sameCode(stored, code) {
		return ErrOTPNotFound
	}
	if err := s.client.Del(ctx, redisKey(email)).Err(); err != nil {
		return fmt.Errorf("redis delete otp: %w", err)
	}
	return nil
}

type dbOTPStore struct {
	db *gorm.DB
}

func NewDBOTPStore(db *gorm.DB) OTPStore {
	return &dbOTPStore{db: db}
}

func (s *dbOTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	email = normalizeEmail(email)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&Models.OTPCode{}).Error; err != nil {
			return fmt.Errorf("clear otp: %w", err)
		}
		otp := Models.OTPCode{Email: email, Code: code, ExpiresAt: time.Now().Add(ttl)}
		if err := tx.Create(&otp).Error; err != nil {
			return fmt.Errorf("save otp: %w", err)
		}
		return nil
	})
}

func (s *dbOTPStore) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)

	var otp Models.OTPCode
	err := s.db.WithContext(ctx).
		Where("email = ? AND expires_at > ?", email, time.Now()).
		Order("id DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if !sameCode(otp.Code, code) {
		return ErrOTPNotFound
	}
	return s.db.WithContext(ctx).Where("email = ?", email).Delete(&Models.OTPCode{}).Error
}

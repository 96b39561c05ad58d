package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/vishwajeetguru/smart-truck-manager/Config"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"gorm.io/gorm"
)

// ProfileKey is the c.Locals key holding the authenticated Models.Profile.
const ProfileKey = "profile"

type Authenticator struct {
	DB     *gorm.DB
	secret []byte
	ttl    time.Duration
}

func NewAuthenticator(db *gorm.DB, cfg Config.AuthConfig) *Authenticator {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Authenticator{DB: db, secret: []byte(cfg.JWTSecret), ttl: ttl}
}

// IssueToken signs a token whose issuer is the profile id.
func (a *Authenticator) IssueToken(profileID string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    profileID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

// bearer reads the token from the Authorization header, then the jwt cookie.
func bearer(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return c.Cookies("jwt")
}

// Verify authenticates the request and stores the profile in c.Locals.
func (a *Authenticator) Verify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearer(c)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not Logged In.",
			})
		}

		token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok || claims.Issuer == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token claims",
			})
		}

		var profile Models.Profile
		err = a.DB.WithContext(c.UserContext()).Where("id = ?", claims.Issuer).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to load profile",
				"error":   err.Error(),
			})
		}

		if profile.IsBlocked {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Your account has been blocked",
			})
		}

		c.Locals(ProfileKey, profile)
		return c.Next()
	}
}

// CurrentProfile returns the profile stored by Verify.
func CurrentProfile(c *fiber.Ctx) (Models.Profile, bool) {
	profile, ok := c.Locals(ProfileKey).(Models.Profile)
	return profile, ok
}

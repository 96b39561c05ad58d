package Controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vishwajeetguru/smart-truck-manager/Cache"
	"github.com/vishwajeetguru/smart-truck-manager/Config"
	"github.com/vishwajeetguru/smart-truck-manager/Logger"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"github.com/vishwajeetguru/smart-truck-manager/email"
	"github.com/vishwajeetguru/smart-truck-manager/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles registration, password and OTP login, and the owner's profile.
type AuthHandler struct {
	DB     *gorm.DB
	Auth   *middleware.Authenticator
	OTP    Cache.OTPStore
	Mail   email.Sender
	Config Config.AuthConfig
}

func NewAuthHandler(db *gorm.DB, auth *middleware.Authenticator, otp Cache.OTPStore, mail email.Sender, cfg Config.AuthConfig) *AuthHandler {
	return &AuthHandler{DB: db, Auth: auth, OTP: otp, Mail: mail, Config: cfg}
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	FullName    string `json:"full_name" validate:"max=120"`
	Mobile      string `json:"mobile" validate:"max=20"`
	CountryCode string `json:"country_code" validate:"max=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SendOTPInput struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ProfileUpdate struct {
	FullName        *string `json:"full_name" validate:"omitempty,max=120"`
	Mobile          *string `json:"mobile" validate:"omitempty,max=20"`
	MobileSecondary *string `json:"mobile_secondary" validate:"omitempty,max=20"`
	CountryCode     *string `json:"country_code" validate:"omitempty,max=6"`
	ProfilePicture  *string `json:"profile_picture"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func (h *AuthHandler) newProfile(emailAddr string) Models.Profile {
	profile := Models.Profile{Email: emailAddr, Role: Models.RoleUser}
	if h.Config.TrialDays > 0 {
		expires := now().AddDate(0, 0, h.Config.TrialDays)
		profile.TrialExpiresAt = &expires
	}
	return profile
}

// signIn issues a token, sets it as the jwt cookie and writes the response.
func (h *AuthHandler) signIn(c *fiber.Ctx, status int, message string, profile Models.Profile) error {
	token, expires, err := h.Auth.IssueToken(profile.ID)
	if err != nil {
		return serverError(c, "Failed to issue token", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"data": fiber.Map{
			"token":           token,
			"expires_at":      expires,
			"profile":         profile,
			"trial_days_left": profile.TrialDaysLeft(now()),
		},
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	ctx := c.UserContext()
	emailAddr := normalizeEmail(input.Email)
	var count int64
	if err := h.DB.WithContext(ctx).Model(&Models.Profile{}).Where("email = ?", emailAddr).Count(&count).Error; err != nil {
		return serverError(c, "Failed to check email", err)
	}
	if count > 0 {
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"message": "Email is already registered",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return serverError(c, "Failed to hash password", err)
	}

	profile := h.newProfile(emailAddr)
	profile.PasswordHash = hash
	profile.FullName = strings.TrimSpace(input.FullName)
	profile.Mobile = strings.TrimSpace(input.Mobile)
	profile.CountryCode = input.CountryCode
	if err := h.DB.WithContext(ctx).Create(&profile).Error; err != nil {
		return serverError(c, "Failed to create profile", err)
	}

	// The profile stays; a failed mail is retried through send-otp.
	if err := h.issueOTP(ctx, emailAddr); err != nil {
		Logger.Log.Error().Err(err).Str("email", emailAddr).Msg("verification code not sent")
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Registered successfully. Please verify your email with the code we sent",
		"data": fiber.Map{
			"profile":         profile,
			"trial_days_left": profile.TrialDaysLeft(now()),
			"expires_in":      int(h.Config.OTPTTL / time.Second),
		},
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input LoginInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	var profile Models.Profile
	err := h.DB.WithContext(c.UserContext()).Where("email = ?", normalizeEmail(input.Email)).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, "Failed to fetch profile", err)
	}
	if err != nil || len(profile.PasswordHash) == 0 ||
		bcrypt.CompareHashAndPassword(profile.PasswordHash, []byte(input.Password)) != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid email or password",
		})
	}
	if profile.IsBlocked {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"message": "Your account has been blocked",
		})
	}
	if !profile.IsVerified {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"message": "Please verify your email first",
		})
	}

	return h.signIn(c, http.StatusOK, "Logged in successfully", profile)
}

func (h *AuthHandler) issueOTP(ctx context.Context, emailAddr string) error {
	code, err := Cache.GenerateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := h.OTP.Save(ctx, emailAddr, code, h.Config.OTPTTL); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if err := h.Mail.Send(email.OTPMessage(emailAddr, code, h.Config.OTPTTL)); err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var input SendOTPInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	emailAddr := normalizeEmail(input.Email)
	if err := h.issueOTP(c.UserContext(), emailAddr); err != nil {
		return serverError(c, "Failed to send code", err)
	}

	Logger.Log.Info().Str("email", emailAddr).Msg("otp sent")
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Code sent",
		"data": fiber.Map{
			"expires_in": int(h.Config.OTPTTL / time.Second),
		},
	})
}

// VerifyOTP consumes the code and signs the owner in, creating the profile on first login.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var input VerifyOTPInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	ctx := c.UserContext()
	emailAddr := normalizeEmail(input.Email)
	err := h.OTP.Verify(ctx, emailAddr, input.Code)
	if errors.Is(err, Cache.ErrOTPNotFound) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid or expired code",
		})
	}
	if err != nil {
		return serverError(c, "Failed to verify code", err)
	}

	var profile Models.Profile
	err = h.DB.WithContext(ctx).Where("email = ?", emailAddr).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = h.newProfile(emailAddr)
		profile.IsVerified = true
		if err := h.DB.WithContext(ctx).Create(&profile).Error; err != nil {
			return serverError(c, "Failed to create profile", err)
		}
	case err != nil:
		return serverError(c, "Failed to fetch profile", err)
	default:
		if profile.IsBlocked {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{
				"message": "Your account has been blocked",
			})
		}
		if !profile.IsVerified {
			if err := h.DB.WithContext(ctx).Model(&profile).Update("is_verified", true).Error; err != nil {
				return serverError(c, "Failed to update profile", err)
			}
		}
	}

	return h.signIn(c, http.StatusOK, "Logged in successfully", profile)
}

func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	profile := ownerOf(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Profile retrieved successfully",
		"data": fiber.Map{
			"profile":         profile,
			"trial_days_left": profile.TrialDaysLeft(now()),
		},
	})
}

// UpdateProfile only touches the contact fields; email, role, trial and block state stay as they are.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var input ProfileUpdate
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	profile := ownerOf(c)
	updates := map[string]interface{}{}
	for column, value := range map[string]*string{
		"full_name":        input.FullName,
		"mobile":           input.Mobile,
		"mobile_secondary": input.MobileSecondary,
		"country_code":     input.CountryCode,
		"profile_picture":  input.ProfilePicture,
	} {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(c.UserContext()).Model(&profile).Updates(updates).Error; err != nil {
			return serverError(c, "Failed to update profile", err)
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Profile updated successfully",
		"data":    profile,
	})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var input ChangePasswordInput
	if ok, err := bindInput(c, &input); !ok {
		return err
	}

	profile := ownerOf(c)
	if len(profile.PasswordHash) > 0 &&
		bcrypt.CompareHashAndPassword(profile.PasswordHash, []byte(input.CurrentPassword)) != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"message": "Current password is incorrect",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return serverError(c, "Failed to hash password", err)
	}
	if err := h.DB.WithContext(c.UserContext()).Model(&profile).Update("password_hash", hash).Error; err != nil {
		return serverError(c, "Failed to update password", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}

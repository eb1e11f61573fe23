package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/staybook/internal/cache"
	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/helpers"
	"github.com/joshua-takyi/staybook/internal/models"
)

const (
	DefaultOTPTTL      = 5 * time.Minute
	DefaultResetTTL    = time.Hour
	DefaultTokenTTL    = 24 * time.Hour
	otpResendThrottle  = time.Minute
	otpResendKeyPrefix = "otp:resend:"
)

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration
	ResetTTL  time.Duration
}

type UserService struct {
	userRepo  models.UserRepo
	mailer    Mailer
	store     cache.Store
	clock     clock.Clock
	logger    *slog.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
	otpTTL    time.Duration
	resetTTL  time.Duration
}

func NewUserService(userRepo models.UserRepo, mailer Mailer, store cache.Store, clk clock.Clock, logger *slog.Logger, cfg AuthConfig) *UserService {
	if store == nil {
		store = cache.Nop{}
	}
	us := &UserService{
		userRepo:  userRepo,
		mailer:    mailer,
		store:     store,
		clock:     clk,
		logger:    logger,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
		otpTTL:    cfg.OTPTTL,
		resetTTL:  cfg.ResetTTL,
	}
	if us.tokenTTL <= 0 {
		us.tokenTTL = DefaultTokenTTL
	}
	if us.otpTTL <= 0 {
		us.otpTTL = DefaultOTPTTL
	}
	if us.resetTTL <= 0 {
		us.resetTTL = DefaultResetTTL
	}
	return us
}

func (us *UserService) TokenTTL() time.Duration {
	return us.tokenTTL
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,e164"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates an unverified account and e-mails its one-time code.
func (us *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = helpers.NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := models.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if !helpers.IsPasswordStrong(in.Password) {
		return nil, fmt.Errorf("%w: password is not strong enough", models.ErrValidation)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := helpers.GenerateOTP()
	if err != nil {
		return nil, err
	}

	now := us.clock.Now()
	expires := now.Add(us.otpTTL)
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         models.RoleUser,
		OTPCode:      code,
		OTPExpiresAt: &expires,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := us.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	us.sendOTP(ctx, user.Email, code)
	return user, nil
}

func (us *UserService) sendOTP(ctx context.Context, email, code string) {
	body := fmt.Sprintf("<p>Your verification code is <strong>%s</strong>. It expires in %d minutes.</p>", code, int(us.otpTTL.Minutes()))
	if err := us.mailer.Send(ctx, email, "Verify your account", body); err != nil {
		// The user can ask for a new code, so delivery failure does not fail registration.
		us.logger.Error("failed to send otp email", "email", email, "error", err)
	}
}

func (us *UserService) VerifyOTP(ctx context.Context, email, code string) (*models.User, error) {
	email = helpers.NormalizeEmail(email)
	if err := models.Validate.Var(code, "required,len=6,numeric"); err != nil {
		return nil, fmt.Errorf("%w: invalid otp format", models.ErrValidation)
	}
	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, fmt.Errorf("%w: account already verified", models.ErrConflict)
	}
	if user.OTPCode == "" || user.OTPExpiresAt == nil || us.clock.Now().After(*user.OTPExpiresAt) {
		return nil, fmt.Errorf("%w: otp has expired, request a new one", models.ErrValidation)
	}
	if subtle.ConstantTimeCompare([]byte(user.OTPCode), []byte(code)) != 1 {
		return nil, fmt.Errorf("%w: invalid otp", models.ErrValidation)
	}

	return us.userRepo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"is_verified":    true,
		"otp_code":       nil,
		"otp_expires_at": nil,
	})
}

// ResendOTP issues a fresh code, at most once per minute per address.
func (us *UserService) ResendOTP(ctx context.Context, email string) error {
	email = helpers.NormalizeEmail(email)
	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return fmt.Errorf("%w: account already verified", models.ErrConflict)
	}

	throttleKey := otpResendKeyPrefix + email
	ok, err := us.store.SetNX(ctx, throttleKey, "1", otpResendThrottle)
	if err != nil {
		us.logger.Warn("otp throttle unavailable", "error", err)
	} else if !ok {
		return fmt.Errorf("%w: please wait a minute before requesting another code", models.ErrConflict)
	}

	if err := us.storeFreshOTP(ctx, user.ID, email); err != nil {
		// No code went out, so the caller may retry straight away.
		if delErr := us.store.Delete(ctx, throttleKey); delErr != nil {
			us.logger.Warn("failed to clear otp throttle", "error", delErr)
		}
		return err
	}
	return nil
}

func (us *UserService) storeFreshOTP(ctx context.Context, userID, email string) error {
	code, err := helpers.GenerateOTP()
	if err != nil {
		return err
	}
	expires := us.clock.Now().Add(us.otpTTL)
	if _, err := us.userRepo.UpdateUser(ctx, userID, map[string]interface{}{
		"otp_code":       code,
		"otp_expires_at": expires,
	}); err != nil {
		return err
	}
	us.sendOTP(ctx, email, code)
	return nil
}

// Login checks credentials and returns a signed session token.
func (us *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = helpers.NormalizeEmail(email)
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return "", nil, fmt.Errorf("%w: invalid email format", models.ErrValidation)
	}
	if password == "" {
		return "", nil, fmt.Errorf("%w: password is required", models.ErrValidation)
	}

	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
		}
		return "", nil, err
	}
	if !helpers.CheckPassword(user.PasswordHash, password) {
		return "", nil, fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
	}
	if !user.IsVerified {
		return "", nil, fmt.Errorf("%w: account not verified", models.ErrForbidden)
	}

	token, err := helpers.IssueToken(us.jwtSecret, us.tokenTTL, us.clock.Now(), user.ID, user.Email, user.Role, user.IsHost)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ForgotPassword mails a reset link. Unknown addresses succeed silently so accounts cannot be enumerated.
func (us *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = helpers.NormalizeEmail(email)
	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := helpers.GenerateResetToken()
	if err != nil {
		return err
	}
	expires := us.clock.Now().Add(us.resetTTL)
	if _, err := us.userRepo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"reset_token":      token,
		"reset_expires_at": expires,
	}); err != nil {
		return err
	}

	body := fmt.Sprintf("<p>Use this token to reset your password: <strong>%s</strong></p>", token)
	if err := us.mailer.Send(ctx, email, "Reset your password", body); err != nil {
		us.logger.Error("failed to send reset email", "email", email, "error", err)
	}
	return nil
}

func (us *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: reset token is required", models.ErrValidation)
	}
	if !helpers.IsPasswordStrong(newPassword) {
		return fmt.Errorf("%w: password is not strong enough", models.ErrValidation)
	}

	user, err := us.userRepo.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", models.ErrValidation)
		}
		return err
	}
	if user.ResetExpiresAt == nil || us.clock.Now().After(*user.ResetExpiresAt) {
		return fmt.Errorf("%w: invalid or expired reset token", models.ErrValidation)
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	_, err = us.userRepo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"password_hash":    hash,
		"reset_token":      nil,
		"reset_expires_at": nil,
	})
	return err
}

func (us *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}
	return us.userRepo.GetUserByID(ctx, id)
}

type UpdateProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=80"`
	Phone *string `json:"phone" validate:"omitempty,e164"`
}

func (us *UserService) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*models.User, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		fields["phone"] = strings.TrimSpace(*in.Phone)
	}
	return us.userRepo.UpdateUser(ctx, id, fields)
}

func (us *UserService) BecomeHost(ctx context.Context, id string) (*models.User, error) {
	return us.userRepo.UpdateUser(ctx, id, map[string]interface{}{"is_host": true})
}

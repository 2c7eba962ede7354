// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login/logout, and the password
// change and reset flows.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ekazakov/taskmate/internal/common"
	"github.com/ekazakov/taskmate/internal/dbx"
	"github.com/ekazakov/taskmate/internal/logging"
	"github.com/ekazakov/taskmate/internal/server/auth"
	"github.com/ekazakov/taskmate/internal/server/config"
	"github.com/ekazakov/taskmate/internal/server/mailer"
	"github.com/ekazakov/taskmate/internal/server/models"
	"github.com/ekazakov/taskmate/internal/server/repositories/repomanager"
)

// ErrWrongOldPassword is returned by ChangePassword when the supplied old
// password does not match the stored hash.
var ErrWrongOldPassword = errors.New("wrong old password")

// resetEmailTimeout bounds the background reset-email send.
const resetEmailTimeout = 10 * time.Second

// UserService provides authentication-related operations:
// - Register: create a user and issue its bearer token
// - Login: verify credentials and return the stable per-user token
// - Logout: invalidate the user's token
// - ChangePassword / RequestPasswordReset / ConfirmPasswordReset
// - Authenticate: resolve a bearer key to its user
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	mail          mailer.EmailSender
	logger        logging.Logger
	secretKey     []byte
	bcryptCost    int
	resetTokenTTL time.Duration
	resetURLBase  string
}

// NewUserService constructs a UserService using repositories, the email
// sender, and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, mail mailer.EmailSender, l logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		mail:          mail,
		logger:        l.With("module", "user_service"),
		secretKey:     []byte(cfg.SecretKey),
		bcryptCost:    cfg.BcryptCost,
		resetTokenTTL: cfg.ResetTokenTTL,
		resetURLBase:  cfg.ResetURLBase,
	}
}

// Register creates a new user with the given email and password and returns
// its bearer token. The user and token rows are written in one transaction,
// so a half-registered account can never exist. A duplicate email surfaces as
// common.ErrorAlreadyExists from the store-level unique constraint.
func (s *UserService) Register(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	key, err := auth.NewBearerKey()
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:        email,
			PasswordHash: string(hash),
		})
		if err != nil {
			return err
		}
		key, err = s.repomanager.Tokens(tx).GetOrCreate(ctx, user.ID, key)
		return err
	}); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", common.ErrorAlreadyExists
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	return key, nil
}

// Login verifies the credentials and returns the user's bearer token,
// minting one if none exists. Any failure is reported as
// common.ErrorUnauthorized so responses never reveal whether the email or
// the password was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrorUnauthorized
	}

	key, err := auth.NewBearerKey()
	if err != nil {
		return "", common.ErrorInternal
	}

	key, err = s.repomanager.Tokens(s.db).GetOrCreate(ctx, user.ID, key)
	if err != nil {
		return "", common.ErrorInternal
	}

	return key, nil
}

// Authenticate resolves a bearer key to its user. Unknown keys yield
// common.ErrInvalidToken.
func (s *UserService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	token, err := s.repomanager.Tokens(s.db).Find(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return user, nil
}

// Logout deletes the user's bearer token. The old key stops authenticating
// immediately; the next login mints a fresh one.
func (s *UserService) Logout(ctx context.Context, userID int64) error {
	if err := s.repomanager.Tokens(s.db).DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("error deleting token: %w", err)
	}
	return nil
}

// ChangePassword replaces the user's password after verifying the old one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error loading user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrWrongOldPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.repomanager.Users(s.db).UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	return nil
}

// RequestPasswordReset mints a signed reset token for the account and sends
// the reset email in the background. It returns nil for unknown emails as
// well: the caller always acknowledges generically, so account existence is
// never revealed.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "password reset requested for unknown email")
			return nil
		}
		return common.ErrorInternal
	}

	token, err := auth.GenerateResetToken(user.ID, s.secretKey, s.resetTokenTTL)
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}

	params := mailer.NewPasswordResetEmail(user.Email, s.resetURLBase+"?token="+token)

	// Fire-and-forget: delivery failures are logged, never surfaced, so the
	// response stays identical for existing and unknown accounts.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error(context.Background(), "reset email send panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), resetEmailTimeout)
		defer cancel()

		if err := s.mail.SendEmail(ctx, params); err != nil {
			s.logger.Error(ctx, "error sending reset email", "error", err.Error())
		}
	}()

	return nil
}

// ConfirmPasswordReset verifies a reset token and stores the new password.
func (s *UserService) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	userID, err := auth.GetUserIDFromResetToken(resetToken, s.secretKey)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.repomanager.Users(s.db).UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return fmt.Errorf("error updating password: %w", err)
	}

	return nil
}

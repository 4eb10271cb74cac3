package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

var (
	validate = validator.New()

	errInvalidCredentials = fmt.Errorf("%w: invalid credentials", common.ErrorUnauthorized)

	// dummyHash keeps the unknown-email branch of Login as slow as a
	// password mismatch.
	dummyHash = sync.OnceValue(func() string {
		h, _ := auth.HashPassword("notekeeper-dummy-password")
		return h
	})
)

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID    string
	SessionID string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type ChangePasswordInput struct {
	// Email is optional; when given it must match the caller's email.
	Email           string
	CurrentPassword string
	NewPassword     string
}

// SessionCache is a best-effort cache in front of the sessions table.
type SessionCache interface {
	Get(ctx context.Context, id string) *models.Session
	Put(ctx context.Context, s *models.Session)
	Evict(ctx context.Context, ids ...string)
}

// ResetNotifier delivers password reset tokens to their owner.
type ResetNotifier interface {
	NotifyReset(ctx context.Context, user *models.User, token string, expiresAt time.Time) error
}

// LogResetNotifier writes reset tokens to the log. It stands in for a mail
// gateway in development.
type LogResetNotifier struct {
	log logging.Logger
}

func NewLogResetNotifier(log logging.Logger) *LogResetNotifier {
	return &LogResetNotifier{log: log}
}

func (n *LogResetNotifier) NotifyReset(ctx context.Context, user *models.User, token string, expiresAt time.Time) error {
	n.log.Info(ctx, "password reset requested", "user_id", user.ID, "email", user.Email, "token", token, "expires_at", expiresAt)
	return nil
}

// UserService is the access control layer: accounts, sessions and
// passwords.
type UserService struct {
	db                 *sql.DB
	repomanager        repomanager.RepositoryManager
	sessions           SessionCache
	notifier           ResetNotifier
	log                logging.Logger
	jwtSecret          []byte
	sessionValidity    time.Duration
	resetTokenValidity time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	sessions SessionCache, notifier ResetNotifier, log logging.Logger) *UserService {
	return &UserService{
		db:                 db,
		repomanager:        m,
		sessions:           sessions,
		notifier:           notifier,
		log:                log.With("module", "users"),
		jwtSecret:          []byte(cfg.SecretKey),
		sessionValidity:    cfg.SessionValidityDuration,
		resetTokenValidity: cfg.ResetTokenValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkNewPassword(password string) error {
	if utf8.RuneCountInString(password) < common.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, common.MinPasswordLength)
	}
	return nil
}

// Authenticate resolves a bearer token to an Identity. Every failure is
// reported as common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", common.ErrorUnauthorized)
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	session := s.sessions.Get(ctx, claims.ID)
	if session == nil {
		session, err = s.repomanager.Sessions(s.db).Find(ctx, claims.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, fmt.Errorf("%w: session revoked", common.ErrorUnauthorized)
			}
			return nil, fmt.Errorf("error searching session: %w", err)
		}
		s.sessions.Put(ctx, session)
	}

	if session.UserID != claims.UserID {
		return nil, fmt.Errorf("%w: session does not match token", common.ErrorUnauthorized)
	}
	if !session.ExpiresAt.After(now()) {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenExpired)
	}

	return &Identity{UserID: session.UserID, SessionID: session.ID}, nil
}

// Register creates an account and opens its first session.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user := &models.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     normalizeEmail(in.Email),
	}
	if user.FirstName == "" || user.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", common.ErrorValidation)
	}
	if err := validate.Var(user.Email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if err := checkNewPassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = hash

	var result *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return fmt.Errorf("%w: user with this email already exists", common.ErrorAlreadyExists)
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		result, err = s.openSession(ctx, tx, created)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", result.User.ID)
	return result, nil
}

// Login checks credentials. Unknown email and wrong password produce the
// same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.CheckPassword(dummyHash(), password)
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errInvalidCredentials
	}

	return s.openSession(ctx, s.db, user)
}

// Logout revokes the caller's current session.
func (s *UserService) Logout(ctx context.Context, id *Identity) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, id.SessionID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	s.sessions.Evict(ctx, id.SessionID)
	return nil
}

func (s *UserService) Profile(ctx context.Context, id *Identity) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the caller's names; blank values keep the current
// ones.
func (s *UserService) UpdateProfile(ctx context.Context, id *Identity, firstName, lastName string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}

	if v := strings.TrimSpace(firstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(lastName); v != "" {
		user.LastName = v
	}

	updated, err := repo.UpdateProfile(ctx, user.ID, user.FirstName, user.LastName)
	if err != nil {
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return updated, nil
}

// ChangePassword replaces the caller's password and revokes every other
// session of the user.
func (s *UserService) ChangePassword(ctx context.Context, id *Identity, in ChangePasswordInput) error {
	if err := checkNewPassword(in.NewPassword); err != nil {
		return err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, id.UserID)
	if err != nil {
		return fmt.Errorf("error loading user: %w", err)
	}

	if email := strings.TrimSpace(in.Email); email != "" && normalizeEmail(email) != user.Email {
		return fmt.Errorf("%w: email verification failed", common.ErrorValidation)
	}
	if !auth.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return fmt.Errorf("%w: current password is incorrect", common.ErrorUnauthorized)
	}

	revoked, err := s.setPassword(ctx, user.ID, in.NewPassword, id.SessionID)
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password changed", "user_id", user.ID, "revoked_sessions", len(revoked))
	return nil
}

// ForgotPassword issues a single-use reset token and hands it to the
// notifier. It succeeds for unknown emails too.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Debug(ctx, "password reset for unknown email")
			return nil
		}
		return fmt.Errorf("error searching user: %w", err)
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}

	reset := &models.PasswordReset{
		TokenHash: hashResetToken(token),
		UserID:    user.ID,
		ExpiresAt: now().Add(s.resetTokenValidity),
	}
	if err := s.repomanager.PasswordResets(s.db).Create(ctx, reset); err != nil {
		return fmt.Errorf("error saving reset token: %w", err)
	}

	if err := s.notifier.NotifyReset(ctx, user, token, reset.ExpiresAt); err != nil {
		return fmt.Errorf("error sending reset token: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token, sets the new password and revokes
// every session of the user.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: reset token is required", common.ErrorValidation)
	}
	if err := checkNewPassword(newPassword); err != nil {
		return err
	}

	reset, err := s.repomanager.PasswordResets(s.db).Consume(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: invalid reset token", common.ErrorUnauthorized)
		}
		return fmt.Errorf("error consuming reset token: %w", err)
	}
	if !reset.ExpiresAt.After(now()) {
		return fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrResetExpired)
	}

	revoked, err := s.setPassword(ctx, reset.UserID, newPassword, "")
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password reset", "user_id", reset.UserID, "revoked_sessions", len(revoked))
	return nil
}

// setPassword stores a new hash and drops the user's sessions except keep,
// plus any pending reset tokens, in one transaction.
func (s *UserService) setPassword(ctx context.Context, userID, password, keep string) ([]string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var revoked []string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, userID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		ids, err := s.repomanager.Sessions(tx).DeleteByUser(ctx, userID, keep)
		if err != nil {
			return fmt.Errorf("error revoking sessions: %w", err)
		}
		if err := s.repomanager.PasswordResets(tx).DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("error deleting reset tokens: %w", err)
		}
		revoked = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sessions.Evict(ctx, revoked...)
	return revoked, nil
}

func (s *UserService) openSession(ctx context.Context, db dbx.DBTX, user *models.User) (*AuthResult, error) {
	sessionID := uuid.NewString()

	token, expiresAt, err := auth.GenerateToken(user.ID, sessionID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	session := &models.Session{ID: sessionID, UserID: user.ID, ExpiresAt: expiresAt}
	if err := s.repomanager.Sessions(db).Create(ctx, session); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	s.sessions.Put(ctx, session)

	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

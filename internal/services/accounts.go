package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/repository"
	"djbooks_back_end/internal/utils"

	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type TokenRevoker interface {
	BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error
}

type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type Accounts struct {
	users   UserStore
	revoker TokenRevoker
	secret  []byte
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewAccounts(users UserStore, revoker TokenRevoker, secret string, ttl time.Duration, logger *zap.Logger) *Accounts {
	return &Accounts{users: users, revoker: revoker, secret: []byte(secret), ttl: ttl, logger: logger, now: time.Now}
}

func (a *Accounts) Signup(ctx context.Context, in models.SignupInput) (AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := models.Validate(in); err != nil {
		return AuthResult{}, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := a.users.CreateUser(ctx, models.User{Username: in.Username, Email: in.Email, Password: hash})
	if errors.Is(err, repository.ErrConflict) {
		field := "email"
		if strings.Contains(err.Error(), "username") {
			field = "username"
		}
		return AuthResult{}, models.NewValidationError(map[string]string{field: "A user with that " + field + " already exists."})
	}
	if err != nil {
		return AuthResult{}, err
	}

	a.logger.Info("user signed up", zap.String("user_id", user.ID))
	return a.issue(user)
}

func (a *Accounts) Login(ctx context.Context, in models.LoginInput) (AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := models.Validate(in); err != nil {
		return AuthResult{}, err
	}

	user, err := a.users.UserByEmail(ctx, in.Email)
	if errors.Is(err, models.ErrNotFound) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, err
	}

	ok, err := utils.VerifyPassword(in.Password, user.Password)
	if err != nil {
		a.logger.Warn("stored password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
		return AuthResult{}, ErrInvalidCredentials
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}
	return a.issue(user)
}

func (a *Accounts) issue(user models.User) (AuthResult, error) {
	token, err := utils.GenerateJWT(user, a.secret, a.ttl)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// Logout revokes the token until it would have expired anyway.
func (a *Accounts) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(a.now())
	if ttl <= 0 {
		return nil
	}
	return a.revoker.BlacklistToken(ctx, tokenID, ttl)
}

func (a *Accounts) User(ctx context.Context, userID string) (models.User, error) {
	return a.users.UserByID(ctx, userID)
}

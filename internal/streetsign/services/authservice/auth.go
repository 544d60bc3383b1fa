package authservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/reemaRaven/streetsign/internal/pkg/config"
	"github.com/reemaRaven/streetsign/internal/pkg/jwtauth"
	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
	"github.com/reemaRaven/streetsign/internal/streetsign/repository/sessionrepo"
	"github.com/reemaRaven/streetsign/internal/streetsign/repository/userrepo"
)

var ErrInvalidCredentials = errors.New("invalid login name or password")

type Repository interface {
	GetUserByLogin(context.Context, string) (models.User, error)
	GetUserByID(context.Context, int) (models.User, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, userID int) error
	GetSession(ctx context.Context, sessionID string) (int, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type AuthService struct {
	userRepo Repository
	sessions SessionStore
	cfg      config.Auth
}

func New(userRepo Repository, sessions SessionStore, cfg config.Auth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		cfg:      cfg,
	}
}

// Login checks the credentials and opens a server-side session. The
// returned session id goes into the browser cookie; nothing about the
// password survives the call.
func (as *AuthService) Login(ctx context.Context, loginName, password string) (models.User, string, error) {
	u, err := as.userRepo.GetUserByLogin(ctx, loginName)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, "", ErrInvalidCredentials
		}

		return models.User{}, "", fmt.Errorf("get user error: %w", err)
	}

	if !u.CheckPassword(password) {
		return models.User{}, "", ErrInvalidCredentials
	}

	sessionID := uuid.NewString()

	if err := as.sessions.CreateSession(ctx, sessionID, u.ID); err != nil {
		return models.User{}, "", fmt.Errorf("create session error: %w", err)
	}

	return u, sessionID, nil
}

func (as *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := as.sessions.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, sessionrepo.ErrNotFound) {
		return fmt.Errorf("delete session error: %w", err)
	}

	return nil
}

// AuthSession resolves a session id to the current user record.
func (as *AuthService) AuthSession(ctx context.Context, sessionID string) (models.User, error) {
	userID, err := as.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionrepo.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}

		return models.User{}, fmt.Errorf("get session error: %w", err)
	}

	u, err := as.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	return u, nil
}

// LoginToken checks the credentials and mints a JWT for API clients.
func (as *AuthService) LoginToken(ctx context.Context, loginName, password string) (string, error) {
	u, err := as.userRepo.GetUserByLogin(ctx, loginName)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", fmt.Errorf("get user error: %w", err)
	}

	if !u.CheckPassword(password) {
		return "", ErrInvalidCredentials
	}

	token, err := jwtauth.GetToken(u, as.cfg.TTL, as.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("can't get token error: %w", err)
	}

	return token, nil
}

// AuthToken validates a bearer token and loads the user record behind it,
// so a deleted account stops working the moment it is gone.
func (as *AuthService) AuthToken(ctx context.Context, token string) (models.User, error) {
	claims, err := jwtauth.ValidateToken(token, as.cfg.Secret)
	if err != nil {
		return models.User{}, fmt.Errorf("validate token error: %w", err)
	}

	u, err := as.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	return u, nil
}

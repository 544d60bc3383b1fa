package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/reemaRaven/streetsign/internal/pkg/config"
	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
	"github.com/reemaRaven/streetsign/internal/streetsign/services/userservice"
	"github.com/reemaRaven/streetsign/pkg/logger"
)

type Server struct {
	serv        *http.Server
	userService UserService
	authService AuthService
	cookies     cookieCodec
	lg          logger.Logger
}

type UserService interface {
	ListUsers(ctx context.Context, caller *models.User) ([]models.User, error)
	GetUser(ctx context.Context, caller *models.User, id int) (models.User, error)
	UserPosts(ctx context.Context, caller *models.User, id int) ([]models.Post, error)
	CreateUser(ctx context.Context, caller *models.User, req userservice.CreateUserRequest) (int, error)
	UpdateUser(ctx context.Context, caller *models.User, req userservice.UpdateUserRequest) error
	DeleteUser(ctx context.Context, caller *models.User, id int) error
}

type AuthService interface {
	Login(ctx context.Context, loginName, password string) (models.User, string, error)
	Logout(ctx context.Context, sessionID string) error
	AuthSession(ctx context.Context, sessionID string) (models.User, error)
	LoginToken(ctx context.Context, loginName, password string) (string, error)
	AuthToken(ctx context.Context, token string) (models.User, error)
}

func New(cfg config.Server, sessCfg config.Sessions, us UserService, authService AuthService, lg logger.Logger) *Server {
	s := Server{ //nolint:exhaustruct
		userService: us,
		authService: authService,
		cookies:     newCookieCodec(sessCfg),
		lg:          lg,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware(lg))
	r.Use(chimw.Recoverer)
	r.Use(s.identify)

	r.Get("/login", s.LoginForm)
	r.Post("/login", s.PostLogin)
	r.Post("/logout", s.PostLogout)

	r.Get("/users", s.GetUsers)
	r.Post("/users", s.PostUsers)
	r.Get("/users/{id}/edit", s.GetUserEdit)
	r.Post("/users/{id}/edit", s.PostUserEdit)
	r.Post("/users/{id}/delete", s.PostUserDelete)

	r.Post("/api/auth", s.PostAuth)
	r.Get("/api/users", s.GetAPIUsers)

	serv := &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	s.serv = serv

	return &s
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.serv.Handler
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}

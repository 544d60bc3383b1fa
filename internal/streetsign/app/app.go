package app

import (
	"context"
	"fmt"
	"time"

	"github.com/reemaRaven/streetsign/internal/pkg/config"
	"github.com/reemaRaven/streetsign/internal/streetsign/api/server"
	pr "github.com/reemaRaven/streetsign/internal/streetsign/repository/postrepo/postgres"
	sessions "github.com/reemaRaven/streetsign/internal/streetsign/repository/sessionrepo/redis"
	ur "github.com/reemaRaven/streetsign/internal/streetsign/repository/userrepo/postgres"
	"github.com/reemaRaven/streetsign/internal/streetsign/services/authservice"
	"github.com/reemaRaven/streetsign/internal/streetsign/services/userservice"
	"github.com/reemaRaven/streetsign/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type StreetsignApp struct {
	s   Server
	lg  logger.Logger
	cfg config.Config
}

func New(ctx context.Context, cfg config.Config) (StreetsignApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return StreetsignApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	userRepo, err := ur.New(ctx, cfg.PostgresDB)
	if err != nil {
		return StreetsignApp{}, fmt.Errorf("postgres user repo initializing error: %w", err)
	}

	postRepo, err := pr.New(ctx, cfg.PostgresDB)
	if err != nil {
		return StreetsignApp{}, fmt.Errorf("postgres post repo initializing error: %w", err)
	}

	sessionStore, err := sessions.New(ctx, cfg.Sessions)
	if err != nil {
		return StreetsignApp{}, fmt.Errorf("redis session store initializing error: %w", err)
	}

	authService := authservice.New(userRepo, sessionStore, cfg.Auth)
	userService := userservice.New(userRepo, postRepo, lg)

	if err := userService.Bootstrap(ctx, cfg.Bootstrap.LoginName,
		cfg.Bootstrap.EmailAddress, cfg.Bootstrap.Password); err != nil {
		return StreetsignApp{}, fmt.Errorf("bootstrap admin error: %w", err)
	}

	s := server.New(cfg.Server, cfg.Sessions, userService, authService, lg)

	return StreetsignApp{
		s:   s,
		lg:  lg,
		cfg: cfg,
	}, nil
}

func (sa *StreetsignApp) Run(ctx context.Context) {
	sa.lg.Infof("STARTED SERVER ON %s", sa.cfg.Server.Addr)

	go func() {
		if err := sa.s.Start(ctx); err != nil {
			sa.lg.Errorf("server start error: %s", err.Error())
			ctx.Done()

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := sa.Stop(ctxS); err != nil { //nolint:contextcheck
		sa.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (sa *StreetsignApp) Stop(ctx context.Context) error {
	if err := sa.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	sa.lg.Info("Shutdowned successfully")

	return nil
}

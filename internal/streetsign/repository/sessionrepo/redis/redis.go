package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/reemaRaven/streetsign/internal/pkg/config"
	"github.com/reemaRaven/streetsign/internal/pkg/redistools"
	"github.com/reemaRaven/streetsign/internal/streetsign/repository/sessionrepo"
)

// SessionStore keeps login sessions server-side: an opaque session id
// maps to the user id, expiring after the configured TTL.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(ctx context.Context, cfg config.Sessions) (SessionStore, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return SessionStore{}, fmt.Errorf("connect error: %w", err)
	}

	return SessionStore{
		rdb: rdb,
		ttl: cfg.TTL,
	}, nil
}

func (ss SessionStore) CreateSession(ctx context.Context, sessionID string, userID int) error {
	_, err := ss.rdb.Set(ctx, "session:"+sessionID, strconv.Itoa(userID), ss.ttl).Result()
	if err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

// GetSession resolves a session id to a user id and slides the expiry
// forward, so active users are not logged out mid-visit.
func (ss SessionStore) GetSession(ctx context.Context, sessionID string) (int, error) {
	val, err := ss.rdb.Get(ctx, "session:"+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, sessionrepo.ErrNotFound
	} else if err != nil {
		return 0, fmt.Errorf("get error: %w", err)
	}

	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse session value error: %w", err)
	}

	if err := ss.rdb.Expire(ctx, "session:"+sessionID, ss.ttl).Err(); err != nil {
		return 0, fmt.Errorf("expire error: %w", err)
	}

	return userID, nil
}

func (ss SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	deleted, err := ss.rdb.Del(ctx, "session:"+sessionID).Result()
	if err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	if deleted == 0 {
		return sessionrepo.ErrNotFound
	}

	return nil
}

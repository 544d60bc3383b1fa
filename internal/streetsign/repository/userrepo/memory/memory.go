// Package memory holds an in-memory user repository used by tests
// and local development runs that have no database around.
package memory

import (
	"context"
	"sync"

	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
	"github.com/reemaRaven/streetsign/internal/streetsign/repository/userrepo"
)

type UsersMemoryRepo struct {
	mu     sync.RWMutex
	users  map[int]models.User
	nextID int
}

func New() *UsersMemoryRepo {
	return &UsersMemoryRepo{
		users:  make(map[int]models.User),
		nextID: 1,
	}
}

func (ur *UsersMemoryRepo) CreateUser(_ context.Context, u models.User) (int, error) {
	ur.mu.Lock()
	defer ur.mu.Unlock()

	for _, existing := range ur.users {
		if existing.LoginName == u.LoginName {
			return 0, userrepo.ErrAlreadyExists
		}
	}

	u.ID = ur.nextID
	ur.nextID++
	ur.users[u.ID] = u

	return u.ID, nil
}

func (ur *UsersMemoryRepo) GetUserByID(_ context.Context, id int) (models.User, error) {
	ur.mu.RLock()
	defer ur.mu.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return models.User{}, userrepo.ErrNotFound
	}

	return u, nil
}

func (ur *UsersMemoryRepo) GetUserByLogin(_ context.Context, loginName string) (models.User, error) {
	ur.mu.RLock()
	defer ur.mu.RUnlock()

	for _, u := range ur.users {
		if u.LoginName == loginName {
			return u, nil
		}
	}

	return models.User{}, userrepo.ErrNotFound
}

func (ur *UsersMemoryRepo) ListUsers(_ context.Context) ([]models.User, error) {
	ur.mu.RLock()
	defer ur.mu.RUnlock()

	users := make([]models.User, 0, len(ur.users))

	for id := 1; id < ur.nextID; id++ {
		if u, ok := ur.users[id]; ok {
			users = append(users, u)
		}
	}

	return users, nil
}

func (ur *UsersMemoryRepo) UpdateEmail(_ context.Context, id int, emailAddress string) error {
	ur.mu.Lock()
	defer ur.mu.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return userrepo.ErrNotFound
	}

	u.EmailAddress = emailAddress
	ur.users[id] = u

	return nil
}

func (ur *UsersMemoryRepo) UpdatePasswordHash(_ context.Context, id int, oldHash, newHash string) error {
	ur.mu.Lock()
	defer ur.mu.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return userrepo.ErrNotFound
	}

	if u.PasswordHash != oldHash {
		return userrepo.ErrHashConflict
	}

	u.PasswordHash = newHash
	ur.users[id] = u

	return nil
}

func (ur *UsersMemoryRepo) DeleteUser(_ context.Context, id int) error {
	ur.mu.Lock()
	defer ur.mu.Unlock()

	if _, ok := ur.users[id]; !ok {
		return userrepo.ErrNotFound
	}

	delete(ur.users, id)

	return nil
}

func (ur *UsersMemoryRepo) CountUsers(_ context.Context) (int, error) {
	ur.mu.RLock()
	defer ur.mu.RUnlock()

	return len(ur.users), nil
}

func (ur *UsersMemoryRepo) Shutdown(_ context.Context) error {
	return nil
}

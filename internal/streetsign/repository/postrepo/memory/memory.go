// Package memory holds an in-memory post repository used by tests.
package memory

import (
	"context"
	"sync"

	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
	"github.com/reemaRaven/streetsign/internal/streetsign/repository/postrepo"
)

type PostsMemoryRepo struct {
	mu     sync.RWMutex
	posts  map[int]models.Post
	nextID int
}

func New() *PostsMemoryRepo {
	return &PostsMemoryRepo{
		posts:  make(map[int]models.Post),
		nextID: 1,
	}
}

func (pr *PostsMemoryRepo) CreatePost(_ context.Context, p models.Post) (int, error) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	p.ID = pr.nextID
	pr.nextID++
	pr.posts[p.ID] = p

	return p.ID, nil
}

func (pr *PostsMemoryRepo) GetPost(_ context.Context, id int) (models.Post, error) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	p, ok := pr.posts[id]
	if !ok {
		return models.Post{}, postrepo.ErrNotFound
	}

	return p, nil
}

func (pr *PostsMemoryRepo) GetPostsByAuthor(_ context.Context, authorID int) ([]models.Post, error) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	posts := make([]models.Post, 0, len(pr.posts))

	for id := 1; id < pr.nextID; id++ {
		if p, ok := pr.posts[id]; ok && p.AuthorID == authorID {
			posts = append(posts, p)
		}
	}

	return posts, nil
}

func (pr *PostsMemoryRepo) DeletePostsByAuthor(_ context.Context, authorID int) error {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	for id, p := range pr.posts {
		if p.AuthorID == authorID {
			delete(pr.posts, id)
		}
	}

	return nil
}

func (pr *PostsMemoryRepo) Shutdown(_ context.Context) error {
	return nil
}

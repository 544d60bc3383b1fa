package models

import (
	"time"
)

// Post is a piece of signage content authored by a user. Only the
// fields the user subsystem needs are carried here: deleting a user
// disposes of that user's posts.
type Post struct {
	ID        int                    `json:"post_id"`    //nolint:tagliatelle
	AuthorID  int                    `json:"author_id"`  //nolint:tagliatelle
	Active    bool                   `json:"is_active"`  //nolint:tagliatelle
	CreatedAt time.Time              `json:"created_at"` //nolint:tagliatelle
	UpdatedAt time.Time              `json:"updated_at"` //nolint:tagliatelle
	Content   map[string]interface{} `json:"content"`
}

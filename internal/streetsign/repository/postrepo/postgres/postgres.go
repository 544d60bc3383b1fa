package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reemaRaven/streetsign/internal/pkg/config"
	"github.com/reemaRaven/streetsign/internal/pkg/pgtools"
	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
	"github.com/reemaRaven/streetsign/internal/streetsign/repository/postrepo"
)

type PostsPostgresRepo struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (PostsPostgresRepo, error) {
	db, err := pgtools.Connect(ctx, pgtools.ConnString(cfg))
	if err != nil {
		return PostsPostgresRepo{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return PostsPostgresRepo{}, fmt.Errorf("apply migration error: %w", err)
	}

	return PostsPostgresRepo{
		db: db,
	}, nil
}

func (pr PostsPostgresRepo) CreatePost(ctx context.Context, p models.Post) (id int, err error) { //nolint:nonamedreturns
	contentJSON, err := json.Marshal(p.Content)
	if err != nil {
		return 0, fmt.Errorf("marshal content error: %w", err)
	}

	tx, err := pr.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("posts").
		Columns("author_id", "is_active", "content", "created_at", "updated_at").
		Values(p.AuthorID, p.Active, contentJSON, p.CreatedAt, p.UpdatedAt).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("scan error: %w", err)
	}

	return id, nil
}

func (pr PostsPostgresRepo) GetPostsByAuthor(ctx context.Context, authorID int) (posts []models.Post, err error) { //nolint:nonamedreturns
	tx, err := pr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "author_id", "is_active", "content", "created_at", "updated_at").
		From("posts").
		Where(squirrel.Eq{"author_id": authorID}).
		OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	posts = make([]models.Post, 0, 10) //nolint:gomnd

	for rows.Next() {
		var p models.Post

		var contentJSON string

		err = rows.Scan(&p.ID, &p.AuthorID, &p.Active, &contentJSON, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan error %w", err)
		}

		tmp := make(map[string]interface{})

		err = json.Unmarshal([]byte(contentJSON), &tmp)
		if err != nil {
			return nil, fmt.Errorf("unmarshal error %w", err)
		}

		p.Content = tmp

		posts = append(posts, p)
	}

	return posts, nil
}

func (pr PostsPostgresRepo) GetPost(ctx context.Context, id int) (p models.Post, err error) { //nolint:nonamedreturns
	tx, err := pr.db.Begin(ctx)
	if err != nil {
		return models.Post{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "author_id", "is_active", "content", "created_at", "updated_at").
		From("posts").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Post{}, fmt.Errorf("to sql error: %w", err)
	}

	var contentJSON string

	if err := tx.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.AuthorID, &p.Active, &contentJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, postrepo.ErrNotFound
		}

		return p, fmt.Errorf("scan error: %w", err)
	}

	tmp := make(map[string]interface{})

	if err := json.Unmarshal([]byte(contentJSON), &tmp); err != nil {
		return p, fmt.Errorf("unmarshal error %w", err)
	}

	p.Content = tmp

	return p, nil
}

// DeletePostsByAuthor removes every post the user authored. Called when
// the user itself is deleted.
func (pr PostsPostgresRepo) DeletePostsByAuthor(ctx context.Context, authorID int) (err error) { //nolint:nonamedreturns
	tx, err := pr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("posts").
		Where(squirrel.Eq{"author_id": authorID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (pr PostsPostgresRepo) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		pr.db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}

package postgres

import (
	"context"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
)

type postsRepo struct {
	db dbtx
}

func (r *postsRepo) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, content, owner_id) VALUES ($1, $2, $3) RETURNING id`,
		p.Title, p.Content, p.OwnerID,
	).Scan(&p.ID)
	if err != nil {
		return domain.Post{}, mapPgError(err)
	}
	return p, nil
}

func (r *postsRepo) GetPostByID(ctx context.Context, id int64) (domain.Post, error) {
	var p domain.Post
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, owner_id FROM posts WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.OwnerID)
	if err != nil {
		return domain.Post{}, mapNotFound(err)
	}
	return p, nil
}

func (r *postsRepo) ListPosts(ctx context.Context, skip, limit int) ([]domain.Post, error) {
	return r.list(ctx,
		`SELECT id, title, content, owner_id FROM posts ORDER BY id LIMIT $1 OFFSET $2`, limit, skip)
}

func (r *postsRepo) ListPostsByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error) {
	return r.list(ctx,
		`SELECT id, title, content, owner_id FROM posts WHERE owner_id = $1 ORDER BY id`, ownerID)
}

func (r *postsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.OwnerID); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postsRepo) DeletePost(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id))
}

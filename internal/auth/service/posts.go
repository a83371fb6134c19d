package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
)

const (
	DefaultPostLimit = 100
	MaxPostLimit     = 100
)

type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (in PostInput) validate() error {
	if n := utf8.RuneCountInString(in.Title); n < 1 || n > domain.PostTitleMaxLen {
		return invalid("title", fmt.Sprintf("must be between 1 and %d characters", domain.PostTitleMaxLen))
	}
	if n := utf8.RuneCountInString(in.Content); n < 1 || n > domain.PostContentMaxLen {
		return invalid("content", fmt.Sprintf("must be between 1 and %d characters", domain.PostContentMaxLen))
	}
	return nil
}

type PostService struct {
	Store store.Store
}

// Create adds a post owned by ownerID. Only that user may do so.
func (s *PostService) Create(ctx context.Context, actor domain.User, ownerID int64, in PostInput) (domain.Post, error) {
	if err := in.validate(); err != nil {
		return domain.Post{}, err
	}
	if err := requireOwner(actor, ownerID, ErrPostCreateForbidden); err != nil {
		return domain.Post{}, err
	}

	p, err := s.Store.Posts().CreatePost(ctx, domain.Post{
		Title:   in.Title,
		Content: in.Content,
		OwnerID: ownerID,
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Post{}, ErrUserNotFound
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}

	slogx.FromContext(ctx).Info("post created", "post_id", p.ID, "owner_id", p.OwnerID)
	return p, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (domain.Post, error) {
	p, err := s.Store.Posts().GetPostByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Post{}, ErrPostNotFound
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// List pages through every post in id order.
func (s *PostService) List(ctx context.Context, skip, limit int) ([]domain.Post, error) {
	if skip < 0 {
		return nil, invalid("skip", "must not be negative")
	}
	if limit < 1 || limit > MaxPostLimit {
		return nil, invalid("limit", fmt.Sprintf("must be between 1 and %d", MaxPostLimit))
	}

	posts, err := s.Store.Posts().ListPosts(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListByOwner returns every post owned by ownerID.
func (s *PostService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error) {
	if _, err := s.Store.Users().GetUserByID(ctx, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup owner: %w", err)
	}

	posts, err := s.Store.Posts().ListPostsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Delete removes a post owned by actor. Existence is checked before
// ownership, so a missing post is a 404 for everyone.
func (s *PostService) Delete(ctx context.Context, actor domain.User, id int64) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Posts().GetPostByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("get post: %w", err)
		}

		if err := requireOwner(actor, p.OwnerID, ErrPostDeleteForbidden); err != nil {
			return err
		}

		if err := tx.Posts().DeletePost(ctx, id); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("post deleted", "post_id", id, "owner_id", actor.ID)
	return nil
}

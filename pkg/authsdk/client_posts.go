package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListPosts returns a page of posts ordered by id.
func (c *SDKClient) ListPosts(ctx context.Context, skip, limit int) ([]Post, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var posts []Post
	if err := c.do(ctx, http.MethodGet, "/posts/?"+q.Encode(), nil, &posts, http.StatusOK); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a single post.
func (c *SDKClient) GetPost(ctx context.Context, id int64) (*Post, error) {
	var p Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePost creates a post owned by userID. Only that user may do so.
func (c *SDKClient) CreatePost(ctx context.Context, userID int64, req PostRequest) (*Post, error) {
	var p Post
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%d/posts/", userID), req, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListUserPosts returns the posts owned by userID.
func (c *SDKClient) ListUserPosts(ctx context.Context, userID int64) ([]Post, error) {
	var posts []Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/posts/", userID), nil, &posts, http.StatusOK); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post. Only its owner may do so.
func (c *SDKClient) DeletePost(ctx context.Context, id int64) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, &msg, http.StatusOK); err != nil {
		return nil, err
	}
	return &msg, nil
}

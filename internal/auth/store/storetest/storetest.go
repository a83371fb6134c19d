// Package storetest holds behaviour every store driver must share. Driver
// packages call Run from their own tests with a factory for a fresh,
// migrated store.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/store"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store. It registers its own cleanup.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("mfa", func(t *testing.T) { testMFA(t, newStore(t)) })
	t.Run("posts", func(t *testing.T) { testPosts(t, newStore(t)) })
	t.Run("transactions", func(t *testing.T) { testTx(t, newStore(t)) })
}

func createUser(t *testing.T, s store.Store, username string) domain.User {
	t.Helper()
	u, err := s.Users().CreateUser(t.Context(), domain.User{
		Username:     username,
		PasswordHash: "hash-" + username,
		Role:         domain.RoleUser,
	})
	require.NoError(t, err)
	return u
}

func testUsers(t *testing.T, s store.Store) {
	ctx := t.Context()

	alice := createUser(t, s, "alice")
	require.NotZero(t, alice.ID)
	require.False(t, alice.MFAEnabled)
	require.Nil(t, alice.MFASecret)

	bob := createUser(t, s, "bob")
	require.NotEqual(t, alice.ID, bob.ID)

	got, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)
	require.Equal(t, "hash-alice", got.PasswordHash)
	require.Equal(t, domain.RoleUser, got.Role)
	require.False(t, got.CreatedAt.IsZero())

	got, err = s.Users().GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "bob", got.Username)

	_, err = s.Users().CreateUser(ctx, domain.User{Username: "alice", PasswordHash: "x"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Users().GetUserByUsername(ctx, "Alice")
	require.ErrorIs(t, err, store.ErrNotFound, "usernames are case-sensitive")

	_, err = s.Users().GetUserByID(ctx, 999_999)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Users().DeleteUser(ctx, bob.ID))
	_, err = s.Users().GetUserByID(ctx, bob.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Users().DeleteUser(ctx, bob.ID), store.ErrNotFound)
}

func testMFA(t *testing.T, s store.Store) {
	ctx := t.Context()
	u := createUser(t, s, "carol")

	require.ErrorIs(t, s.Users().EnableMFA(ctx, u.ID), store.ErrNotFound, "cannot enable without a secret")

	require.NoError(t, s.Users().UpdateMFASecret(ctx, u.ID, "JBSWY3DPEHPK3PXP"))
	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.MFAEnabled)
	require.NotNil(t, got.MFASecret)
	require.Equal(t, "JBSWY3DPEHPK3PXP", *got.MFASecret)

	require.NoError(t, s.Users().EnableMFA(ctx, u.ID))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.MFAEnabled)

	require.NoError(t, s.Users().DisableMFA(ctx, u.ID))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.MFAEnabled)
	require.Nil(t, got.MFASecret)

	require.ErrorIs(t, s.Users().UpdateMFASecret(ctx, 999_999, "X"), store.ErrNotFound)
}

func testPosts(t *testing.T, s store.Store) {
	ctx := t.Context()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")

	var ids []int64
	for _, owner := range []domain.User{alice, bob, alice} {
		p, err := s.Posts().CreatePost(ctx, domain.Post{Title: "T", Content: "C", OwnerID: owner.ID})
		require.NoError(t, err)
		require.NotZero(t, p.ID)
		ids = append(ids, p.ID)
	}

	_, err := s.Posts().CreatePost(ctx, domain.Post{Title: "T", Content: "C", OwnerID: 999_999})
	require.ErrorIs(t, err, store.ErrNotFound, "owner must exist")

	all, err := s.Posts().ListPosts(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, ids[0], all[0].ID)

	page, err := s.Posts().ListPosts(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, ids[1], page[0].ID)

	mine, err := s.Posts().ListPostsByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, p := range mine {
		require.Equal(t, alice.ID, p.OwnerID)
	}

	none, err := s.Posts().ListPostsByOwner(ctx, 999_999)
	require.NoError(t, err)
	require.Empty(t, none)

	require.NoError(t, s.Posts().DeletePost(ctx, ids[0]))
	_, err = s.Posts().GetPostByID(ctx, ids[0])
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Posts().DeletePost(ctx, ids[0]), store.ErrNotFound)

	// Deleting a user removes their posts.
	require.NoError(t, s.Users().DeleteUser(ctx, bob.ID))
	_, err = s.Posts().GetPostByID(ctx, ids[1])
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testTx(t *testing.T, s store.Store) {
	ctx := t.Context()
	errBoom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().CreateUser(ctx, domain.User{Username: "rolled", PasswordHash: "x"})
		require.NoError(t, err)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = s.Users().GetUserByUsername(ctx, "rolled")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().CreateUser(ctx, domain.User{Username: "kept", PasswordHash: "x"})
		if err != nil {
			return err
		}
		_, err = tx.Posts().CreatePost(ctx, domain.Post{Title: "T", Content: "C", OwnerID: u.ID})
		return err
	})
	require.NoError(t, err)

	u, err := s.Users().GetUserByUsername(ctx, "kept")
	require.NoError(t, err)
	posts, err := s.Posts().ListPostsByOwner(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(context.Background(), func(store.Tx) error { return nil })
	})
	require.Error(t, err, "nested transactions are rejected")

	require.NoError(t, s.Ping(ctx))
}

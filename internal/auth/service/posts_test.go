package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestPosts_CreateOwnership(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")

	p, err := f.posts.Create(ctx(t), alice, alice.ID, service.PostInput{Title: "T", Content: "C"})
	require.NoError(t, err)
	require.Equal(t, alice.ID, p.OwnerID)

	_, err = f.posts.Create(ctx(t), bob, alice.ID, service.PostInput{Title: "T", Content: "C"})
	require.ErrorIs(t, err, service.ErrPostCreateForbidden)
	require.Equal(t, service.KindAuthorization, service.Kind(err))
}

func TestPosts_Validation(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")

	for name, in := range map[string]service.PostInput{
		"empty title":   {Title: "", Content: "C"},
		"long title":    {Title: strings.Repeat("t", 101), Content: "C"},
		"empty content": {Title: "T", Content: ""},
		"long content":  {Title: "T", Content: strings.Repeat("c", 1001)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.posts.Create(ctx(t), alice, alice.ID, in)
			require.Equal(t, service.KindValidation, service.Kind(err))
		})
	}

	_, err := f.posts.Create(ctx(t), alice, alice.ID, service.PostInput{
		Title:   strings.Repeat("t", 100),
		Content: strings.Repeat("c", 1000),
	})
	require.NoError(t, err)
}

func TestPosts_DeleteScenario(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")

	p, err := f.posts.Create(ctx(t), alice, alice.ID, service.PostInput{Title: "T", Content: "C"})
	require.NoError(t, err)

	err = f.posts.Delete(ctx(t), bob, p.ID)
	require.ErrorIs(t, err, service.ErrPostDeleteForbidden)

	got, err := f.posts.Get(ctx(t), p.ID)
	require.NoError(t, err, "post survives a forbidden delete")
	require.Equal(t, p, got)

	require.NoError(t, f.posts.Delete(ctx(t), alice, p.ID))

	_, err = f.posts.Get(ctx(t), p.ID)
	require.ErrorIs(t, err, service.ErrPostNotFound)

	// Missing posts are reported before ownership.
	err = f.posts.Delete(ctx(t), bob, p.ID)
	require.ErrorIs(t, err, service.ErrPostNotFound)
}

func TestPosts_List(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")

	for range 3 {
		_, err := f.posts.Create(ctx(t), alice, alice.ID, service.PostInput{Title: "A", Content: "a"})
		require.NoError(t, err)
	}
	_, err := f.posts.Create(ctx(t), bob, bob.ID, service.PostInput{Title: "B", Content: "b"})
	require.NoError(t, err)

	all, err := f.posts.List(ctx(t), 0, service.DefaultPostLimit)
	require.NoError(t, err)
	require.Len(t, all, 4)

	page, err := f.posts.List(ctx(t), 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, all[2].ID, page[0].ID)

	mine, err := f.posts.ListByOwner(ctx(t), alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 3)

	_, err = f.posts.ListByOwner(ctx(t), 999_999)
	require.ErrorIs(t, err, service.ErrUserNotFound)

	for _, bad := range [][2]int{{-1, 10}, {0, 0}, {0, 101}} {
		_, err := f.posts.List(ctx(t), bad[0], bad[1])
		require.Equal(t, service.KindValidation, service.Kind(err), "skip=%d limit=%d", bad[0], bad[1])
	}
}

package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
	"github.com/aussiebroadwan/webtemplate/internal/auth/service"
	"github.com/aussiebroadwan/webtemplate/pkg/authsdk"
	"github.com/aussiebroadwan/webtemplate/pkg/httpx"
)

// PostHandler serves the posts resource. Reads are public; writes are
// limited to the owning user.
type PostHandler struct {
	PostService *service.PostService
}

// HandleList handles GET /posts/
//
//	@Summary		List posts
//	@Tags			Posts
//	@Produce		json
//	@Param			skip	query		int						false	"Posts to skip"		default(0)	minimum(0)
//	@Param			limit	query		int						false	"Page size"			default(100)	minimum(1)	maximum(100)
//	@Success		200		{array}		authsdk.Post			"Posts ordered by id"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid paging"
//	@Router			/posts/ [get].
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	skip, ok := queryInt(w, r, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", service.DefaultPostLimit)
	if !ok {
		return
	}

	posts, err := h.PostService.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePosts(w, posts)
}

// HandleGet handles GET /posts/{id}
//
//	@Summary		Get a post
//	@Tags			Posts
//	@Produce		json
//	@Param			id	path		int						true	"Post ID"
//	@Success		200	{object}	authsdk.Post			"Post"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Post not found"
//	@Router			/posts/{id} [get].
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.PostService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandleListByOwner handles GET /users/{user_id}/posts/
//
//	@Summary		List a user's posts
//	@Tags			Posts
//	@Produce		json
//	@Param			user_id	path		int						true	"Owner ID"
//	@Success		200		{array}		authsdk.Post			"Posts ordered by id"
//	@Failure		404		{object}	authsdk.ErrorResponse	"User not found"
//	@Router			/users/{user_id}/posts/ [get].
func (h *PostHandler) HandleListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}

	posts, err := h.PostService.ListByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePosts(w, posts)
}

// HandleCreate handles POST /users/{user_id}/posts/
//
//	@Summary		Create a post
//	@Description	Creates a post owned by user_id. Only that user may call this.
//	@Tags			Posts
//	@Security		CookieAuth
//	@Accept			json
//	@Produce		json
//	@Param			X-CSRF-Token	header		string					true	"CSRF token"
//	@Param			user_id			path		int						true	"Owner ID"
//	@Param			request			body		authsdk.PostRequest		true	"Title and content"
//	@Success		200				{object}	authsdk.Post			"Created post"
//	@Failure		400				{object}	authsdk.ErrorResponse	"Invalid title or content"
//	@Failure		401				{object}	authsdk.ErrorResponse	"Not authenticated"
//	@Failure		403				{object}	authsdk.ErrorResponse	"Not the owner, or CSRF failure"
//	@Router			/users/{user_id}/posts/ [post].
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := sessionUser(w, r)
	if !ok {
		return
	}
	ownerID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}

	var req authsdk.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.PostService.Create(r.Context(), u, ownerID, service.PostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /posts/{id}
//
//	@Summary		Delete a post
//	@Tags			Posts
//	@Security		CookieAuth
//	@Produce		json
//	@Param			X-CSRF-Token	header		string					true	"CSRF token"
//	@Param			id				path		int						true	"Post ID"
//	@Success		200				{object}	authsdk.MessageResponse	"Post deleted successfully"
//	@Failure		401				{object}	authsdk.ErrorResponse	"Not authenticated"
//	@Failure		403				{object}	authsdk.ErrorResponse	"Not the owner, or CSRF failure"
//	@Failure		404				{object}	authsdk.ErrorResponse	"Post not found"
//	@Router			/posts/{id} [delete].
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := sessionUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.PostService.Delete(r.Context(), u, id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, "Post deleted successfully")
}

func writePosts(w http.ResponseWriter, posts []domain.Post) {
	if posts == nil {
		posts = []domain.Post{}
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return id, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return n, true
}

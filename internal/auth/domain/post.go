package domain

const (
	PostTitleMaxLen   = 100
	PostContentMaxLen = 1000
)

type Post struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	OwnerID int64  `json:"owner_id"`
}

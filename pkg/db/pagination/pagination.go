package pagination

import (
	"encoding/base64"
	"encoding/json"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 250
)

// Pagination carries the cursor request fields shared by list endpoints.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50" validate:"gte=1,lte=250"`
}

// Clamp returns a copy with the page size forced into [1, MaxPageSize].
func (p Pagination) Clamp() Pagination {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Cursor is the decoded position inside a (created_at desc, id desc) ordering.
type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

// EncodeCursor renders a cursor as an opaque page token.
func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeCursor parses a page token produced by EncodeCursor.
func DecodeCursor(token string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// BuildCursorPageInfo derives page info from a result fetched with limit+1
// rows: the extra row signals another page, and the token points at the last
// row kept.
func BuildCursorPageInfo[T any](rows []*T, limit int, tokenFor func(*T) string) *PageInfo {
	if len(rows) == 0 {
		return &PageInfo{}
	}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	return &PageInfo{
		HasMore:       hasMore,
		NextPageToken: tokenFor(rows[len(rows)-1]),
	}
}

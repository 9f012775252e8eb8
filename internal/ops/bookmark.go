package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/store"
)

// BookmarkInput contains parameters for the ToggleBookmark operation.
type BookmarkInput struct {
	ID string // required
}

// BookmarkOutput contains the result of the ToggleBookmark operation.
// Found is false when no contact has the id; nothing was changed then.
type BookmarkOutput struct {
	ID         string `json:"id"`
	Found      bool   `json:"found"`
	Bookmarked bool   `json:"bookmarked"`
}

// ToggleBookmark flips a contact's bookmark flag.
func ToggleBookmark(ctx context.Context, st *store.Store, input BookmarkInput) (*BookmarkOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	c, found, err := st.ToggleBookmark(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BookmarkOutput{ID: id, Found: found, Bookmarked: c.Bookmarked}, nil
}

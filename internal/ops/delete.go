package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/store"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string // required
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete permanently removes a contact. Deleting an unknown id succeeds with
// Deleted=false. Confirming intent is the caller's job.
func Delete(ctx context.Context, st *store.Store, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	deleted, err := st.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: deleted, ID: id}, nil
}

package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/store"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID            string // required
	IncludeAvatar bool
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	ContactItem
}

// Get retrieves one contact by id.
func Get(ctx context.Context, st *store.Store, input GetInput) (*GetOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	c, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &GetOutput{ContactItem: ToContactItem(c, input.IncludeAvatar)}, nil
}

package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/store"
)

// UpdateInput contains parameters for the Update operation. It is a full
// replace: fields left nil are read from the stored record first, so callers
// may send only what changed.
type UpdateInput struct {
	ID         string // required
	Name       *string
	Avatar     *string // "" clears the avatar
	Methods    *[]contact.Method
	Note       *string
	Bookmarked *bool
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	ContactItem
}

// Update replaces a contact's mutable fields, keeping its id, creation time
// and position.
func Update(ctx context.Context, st *store.Store, input UpdateInput) (*UpdateOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Name == nil && input.Avatar == nil && input.Methods == nil && input.Note == nil && input.Bookmarked == nil {
		return nil, errors.NewInvalidRequest("at least one field to update is required")
	}

	var avatar string
	if input.Avatar != nil {
		avatar = strings.TrimSpace(*input.Avatar)
		if avatar != "" {
			if err := validateAvatar(avatar); err != nil {
				return nil, err
			}
		}
	}

	// The overlay runs against the record as stored at write time, so a
	// concurrent change to a field not named here is kept.
	c, err := st.Edit(ctx, id, func(current contact.Contact) (contact.Contact, error) {
		if input.Name != nil {
			current.Name = *input.Name
		}
		if input.Avatar != nil {
			current.Avatar = avatar
		}
		if input.Methods != nil {
			current.Methods = *input.Methods
		}
		if input.Note != nil {
			current.Note = *input.Note
		}
		if input.Bookmarked != nil {
			current.Bookmarked = *input.Bookmarked
		}
		return current, nil
	})
	if err != nil {
		return nil, err
	}
	return &UpdateOutput{ContactItem: ToContactItem(c, false)}, nil
}

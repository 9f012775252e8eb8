package ops

import (
	"context"

	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/store"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Name       string
	Avatar     *string // data URI, optional
	Methods    []contact.Method
	Note       string
	Bookmarked bool
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	ContactItem
}

// Create adds a new contact at the front of the collection.
func Create(ctx context.Context, st *store.Store, input CreateInput) (*CreateOutput, error) {
	avatar := ""
	if a := cleanOptionalString(input.Avatar); a != nil {
		if err := validateAvatar(*a); err != nil {
			return nil, err
		}
		avatar = *a
	}

	c, err := st.Create(ctx, store.CreateInput{
		Name:       input.Name,
		Avatar:     avatar,
		Methods:    input.Methods,
		Note:       input.Note,
		Bookmarked: input.Bookmarked,
	})
	if err != nil {
		return nil, err
	}
	return &CreateOutput{ContactItem: ToContactItem(c, false)}, nil
}

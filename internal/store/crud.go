package store

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/errors"
)

// CreateInput contains the caller-supplied fields of a new contact.
type CreateInput struct {
	Name       string
	Avatar     string
	Methods    []contact.Method
	Note       string
	Bookmarked bool
}

// UpdateInput contains the replacement fields for an existing contact.
type UpdateInput struct {
	ID      string // required
	Name    string
	Avatar  string
	Methods []contact.Method
	Note    string

	// Bookmarked replaces the flag when set; nil keeps the current value.
	Bookmarked *bool
}

// Create assigns a fresh id and creation time, prepends the contact and persists.
func (s *Store) Create(ctx context.Context, input CreateInput) (contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := contact.Contact{
		ID:         s.newID(),
		Name:       input.Name,
		Avatar:     input.Avatar,
		Methods:    contact.CleanMethods(input.Methods),
		Note:       input.Note,
		Bookmarked: input.Bookmarked,
		CreatedAt:  s.now(),
	}

	_, err := s.mutate(ctx, func(cur []contact.Contact) ([]contact.Contact, bool, error) {
		next := make([]contact.Contact, 0, len(cur)+1)
		next = append(next, c)
		next = append(next, cur...)
		return next, true, nil
	})
	if err != nil {
		return contact.Contact{}, err
	}

	log.Debug().Str("id", c.ID).Msg("contact created")
	return c.Clone(), nil
}

// Update replaces the mutable fields of the contact in place.
// id, createdAt and position are preserved.
func (s *Store) Update(ctx context.Context, input UpdateInput) (contact.Contact, error) {
	return s.Edit(ctx, input.ID, func(current contact.Contact) (contact.Contact, error) {
		updated := contact.Contact{
			Name:       input.Name,
			Avatar:     input.Avatar,
			Methods:    input.Methods,
			Note:       input.Note,
			Bookmarked: current.Bookmarked,
		}
		if input.Bookmarked != nil {
			updated.Bookmarked = *input.Bookmarked
		}
		return updated, nil
	})
}

// Edit passes the stored contact with id to edit and saves what it returns,
// reading and writing within one backend transaction. The returned contact's
// id and createdAt are ignored; the originals are kept, as is its position.
// An error from edit aborts the write and is returned as-is.
func (s *Store) Edit(ctx context.Context, id string, edit func(current contact.Contact) (contact.Contact, error)) (contact.Contact, error) {
	if id == "" {
		return contact.Contact{}, errors.NewInvalidRequest("id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated contact.Contact
	_, err := s.mutate(ctx, func(cur []contact.Contact) ([]contact.Contact, bool, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return nil, false, errors.NewNotFound(id)
		}

		current := cur[idx]
		edited, err := edit(current.Clone())
		if err != nil {
			return nil, false, err
		}
		edited.ID = current.ID
		edited.CreatedAt = current.CreatedAt
		edited.Methods = contact.CleanMethods(edited.Methods)

		next := contact.CloneAll(cur)
		next[idx] = edited
		updated = edited
		return next, true, nil
	})
	if err != nil {
		return contact.Contact{}, err
	}

	log.Debug().Str("id", updated.ID).Msg("contact updated")
	return updated.Clone(), nil
}

// Delete removes the contact with id. Removing an absent id is not an error;
// deleted reports whether anything was removed. Nothing is written when it wasn't.
func (s *Store) Delete(ctx context.Context, id string) (deleted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.mutate(ctx, func(cur []contact.Contact) ([]contact.Contact, bool, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return cur, false, nil
		}
		next := make([]contact.Contact, 0, len(cur)-1)
		next = append(next, cur[:idx]...)
		next = append(next, cur[idx+1:]...)
		deleted = true
		return next, true, nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		log.Debug().Str("id", id).Msg("contact deleted")
	}
	return deleted, nil
}

// ToggleBookmark flips the bookmark flag of the contact with id.
// An absent id is a no-op that writes nothing; found reports which case applied.
func (s *Store) ToggleBookmark(ctx context.Context, id string) (c contact.Contact, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.mutate(ctx, func(cur []contact.Contact) ([]contact.Contact, bool, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return cur, false, nil
		}
		next := contact.CloneAll(cur)
		next[idx].Bookmarked = !next[idx].Bookmarked
		c = next[idx].Clone()
		found = true
		return next, true, nil
	})
	if err != nil {
		return contact.Contact{}, false, err
	}
	return c, found, nil
}

// Append concatenates contacts to the end of the collection and persists once.
// Records are taken as-is: no de-duplication and no id reassignment.
func (s *Store) Append(ctx context.Context, contacts []contact.Contact) error {
	if len(contacts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.mutate(ctx, func(cur []contact.Contact) ([]contact.Contact, bool, error) {
		next := contact.CloneAll(cur)
		next = append(next, contact.CloneAll(contacts)...)
		return next, true, nil
	})
	if err != nil {
		return err
	}

	log.Info().Int("appended", len(contacts)).Int("total", len(next)).Msg("contacts appended")
	return nil
}

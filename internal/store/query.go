package store

import (
	"context"

	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/errors"
)

// Search returns the contacts that match term and belong to scope, in
// collection order. An empty term with ScopeAll returns the whole collection.
func (s *Store) Search(ctx context.Context, term string, scope contact.Scope) ([]contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return nil, err
	}

	out := make([]contact.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if c.Matches(term) && c.InScope(scope) {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

// Get returns the contact with id or NOT_FOUND.
func (s *Store) Get(ctx context.Context, id string) (contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return contact.Contact{}, err
	}

	idx := indexOf(s.contacts, id)
	if idx < 0 {
		return contact.Contact{}, errors.NewNotFound(id)
	}
	return s.contacts[idx].Clone(), nil
}

// All returns a copy of the whole collection.
func (s *Store) All(ctx context.Context) ([]contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return contact.CloneAll(s.contacts), nil
}

// Len returns the collection size as of the last read or write.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}

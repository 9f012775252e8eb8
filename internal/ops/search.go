package ops

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/store"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Term  string // optional; empty matches everything
	Scope string // "all" (default) or "bookmarked"
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items []ContactItem `json:"items"`
	Total int           `json:"total"` // size of the whole collection
	Scope string        `json:"scope"`
}

// Search returns the contacts whose name or any method value contains Term,
// restricted to Scope, in collection order. Term is matched verbatim;
// surrounding whitespace is part of what is searched for.
func Search(ctx context.Context, st *store.Store, input SearchInput) (*SearchOutput, error) {
	term := input.Term
	if utf8.RuneCountInString(term) > MaxSearchTermChars {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("term exceeds maximum length of %d characters", MaxSearchTermChars))
	}
	scope, err := contact.ParseScope(input.Scope)
	if err != nil {
		return nil, err
	}

	found, err := st.Search(ctx, term, scope)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{
		Items: toContactItems(found),
		Total: st.Len(),
		Scope: string(scope),
	}, nil
}

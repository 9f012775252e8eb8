package contact

import (
	"strings"

	"github.com/hpungsan/rolo/internal/errors"
)

// Scope restricts a search to a subset of the collection.
type Scope string

const (
	ScopeAll        Scope = "all"
	ScopeBookmarked Scope = "bookmarked"
)

// ParseScope validates a scope string. Empty means ScopeAll.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeBookmarked:
		return ScopeBookmarked, nil
	default:
		return "", errors.NewInvalidRequest("scope must be one of: all, bookmarked")
	}
}

// CleanMethods trims each method and drops those with an empty value.
// The result is never nil.
func CleanMethods(methods []Method) []Method {
	out := make([]Method, 0, len(methods))
	for _, m := range methods {
		value := strings.TrimSpace(m.Value)
		if value == "" {
			continue
		}
		out = append(out, Method{
			Type:  MethodType(strings.TrimSpace(string(m.Type))),
			Value: value,
		})
	}
	return out
}

// Matches reports whether term occurs (case-insensitively) in the name or in
// any method value. An empty term matches everything.
func (c Contact) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(c.Name), term) {
		return true
	}
	for _, m := range c.Methods {
		if strings.Contains(strings.ToLower(m.Value), term) {
			return true
		}
	}
	return false
}

// InScope reports whether c belongs to scope.
func (c Contact) InScope(scope Scope) bool {
	if scope == ScopeBookmarked {
		return c.Bookmarked
	}
	return true
}

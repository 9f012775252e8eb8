package contact

import "time"

// Contact represents one person or entity in the address book.
type Contact struct {
	// ID is a ULID assigned by the store on create; immutable afterwards
	ID string `json:"id"`

	// Name is the display name (may be empty)
	Name string `json:"name"`

	// Avatar is an optional embedded image as a data URI
	Avatar string `json:"avatar"`

	// Methods lists the ways to reach the contact, in display order
	Methods []Method `json:"methods"`

	// Note is free text
	Note string `json:"note"`

	// Bookmarked marks the contact as a favorite
	Bookmarked bool `json:"bookmarked"`

	// CreatedAt is set once at creation and never modified by updates
	CreatedAt time.Time `json:"createdAt"`
}

// Method is one typed way to reach a contact.
type Method struct {
	Type  MethodType `json:"type"`
	Value string     `json:"value"`
}

// Clone returns a deep copy so callers never share the methods slice.
func (c Contact) Clone() Contact {
	out := c
	out.Methods = make([]Method, len(c.Methods))
	copy(out.Methods, c.Methods)
	return out
}

// DisplayName returns the name, or the first method value for unnamed contacts.
func (c Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Methods) > 0 {
		return c.Methods[0].Value
	}
	return c.ID
}

// FirstOf returns the first method value of the given type, if any.
func (c Contact) FirstOf(t MethodType) (string, bool) {
	for _, m := range c.Methods {
		if m.Type == t {
			return m.Value, true
		}
	}
	return "", false
}

// CloneAll deep-copies a slice of contacts.
func CloneAll(cs []Contact) []Contact {
	out := make([]Contact, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

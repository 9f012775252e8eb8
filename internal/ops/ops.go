// Package ops implements the contact operations shared by the CLI, the MCP
// server and the web UI. Each operation takes an XxxInput and returns an
// XxxOutput that serializes directly as the JSON result.
package ops

import (
	"strings"
	"time"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/interchange"
)

// MaxSearchTermChars caps the search term length.
const MaxSearchTermChars = 200

// ContactItem is the JSON shape of a contact in operation results.
type ContactItem struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Avatar     string           `json:"avatar,omitempty"`
	Methods    []contact.Method `json:"methods"`
	Note       string           `json:"note"`
	Bookmarked bool             `json:"bookmarked"`
	CreatedAt  int64            `json:"created_at"`
}

// ToContactItem converts a contact for output. Avatars are omitted unless
// includeAvatar is set, since data URIs dwarf the rest of the record.
func ToContactItem(c contact.Contact, includeAvatar bool) ContactItem {
	item := ContactItem{
		ID:         c.ID,
		Name:       c.Name,
		Methods:    c.Methods,
		Note:       c.Note,
		Bookmarked: c.Bookmarked,
		CreatedAt:  c.CreatedAt.Unix(),
	}
	if item.Methods == nil {
		item.Methods = []contact.Method{}
	}
	if includeAvatar {
		item.Avatar = c.Avatar
	}
	return item
}

func toContactItems(cs []contact.Contact) []ContactItem {
	items := make([]ContactItem, 0, len(cs))
	for _, c := range cs {
		items = append(items, ToContactItem(c, false))
	}
	return items
}

// interchangeOptions derives row rendering options from config.
func interchangeOptions(cfg *config.Config) interchange.Options {
	if cfg == nil {
		return interchange.Options{}
	}
	return interchange.Options{TimeLayout: cfg.TimeLayout}
}

func sheetName(cfg *config.Config) string {
	if cfg == nil || cfg.SheetName == "" {
		return config.DefaultSheetName
	}
	return cfg.SheetName
}

// cleanOptionalString trims a string pointer, returning nil for empty values.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// nowFunc is the clock used for export names and import timestamps.
var nowFunc = time.Now

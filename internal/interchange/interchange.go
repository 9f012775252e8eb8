// Package interchange converts contacts to and from flat spreadsheet rows.
//
// The conversion is lossy by design: ids and avatars are not exported, the
// creation time is written as display text and never read back, and every
// imported row gets a fresh id and creation time.
package interchange

import (
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/sheet"
)

// Fixed column headers.
const (
	HeaderName     = "姓名"
	HeaderBookmark = "书签"
	HeaderNote     = "备注"
	HeaderCreated  = "创建时间"
)

// Bookmark tokens.
const (
	Yes = "是"
	No  = "否"
)

// FixedHeaders lists the non-method columns in export order.
var FixedHeaders = []string{HeaderName, HeaderBookmark, HeaderNote, HeaderCreated}

// Options controls how rows are rendered on export.
type Options struct {
	// TimeLayout formats CreatedAt (Go layout); defaults to config.DefaultTimeLayout.
	TimeLayout string

	// Location is the zone CreatedAt is shown in; defaults to time.Local.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.TimeLayout == "" {
		o.TimeLayout = config.DefaultTimeLayout
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// MethodColumn names the column for the method at overall position index
// (zero-based): the type followed by index+1.
func MethodColumn(t contact.MethodType, index int) string {
	return string(t) + strconv.Itoa(index+1)
}

// ToRows renders one row per contact. Method columns are numbered by the
// method's overall position, not per type: phone, email, phone export as
// phone1, email2, phone3.
func ToRows(contacts []contact.Contact, opts Options) []sheet.Row {
	opts = opts.withDefaults()
	rows := make([]sheet.Row, 0, len(contacts))
	for _, c := range contacts {
		row := sheet.Row{
			HeaderName:     c.Name,
			HeaderBookmark: bookmarkToken(c.Bookmarked),
			HeaderNote:     c.Note,
			HeaderCreated:  c.CreatedAt.In(opts.Location).Format(opts.TimeLayout),
		}
		for i, m := range c.Methods {
			row[MethodColumn(m.Type, i)] = m.Value
		}
		rows = append(rows, row)
	}
	return rows
}

// Columns returns the union header for contacts: the fixed headers followed
// by method columns in first-seen order.
func Columns(contacts []contact.Contact) []string {
	columns := append([]string(nil), FixedHeaders...)
	seen := make(map[string]bool)
	for _, h := range FixedHeaders {
		seen[h] = true
	}
	for _, c := range contacts {
		for i, m := range c.Methods {
			col := MethodColumn(m.Type, i)
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	return columns
}

// ToTable builds the exportable table for contacts.
func ToTable(contacts []contact.Contact, opts Options) *sheet.Table {
	return &sheet.Table{
		Columns: Columns(contacts),
		Rows:    ToRows(contacts, opts),
	}
}

func bookmarkToken(b bool) string {
	if b {
		return Yes
	}
	return No
}

// MethodType derives a method type from a column header by stripping a
// trailing run of decimal digits: "wechat2" becomes "wechat".
func MethodType(header string) contact.MethodType {
	return contact.MethodType(strings.TrimRight(header, "0123456789"))
}

// isFixed reports whether header is one of the non-method columns.
func isFixed(header string) bool {
	for _, h := range FixedHeaders {
		if h == header {
			return true
		}
	}
	return false
}

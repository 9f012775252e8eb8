package interchange

import (
	"sort"
	"time"

	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/sheet"
)

// Result is the outcome of converting rows to contacts.
type Result struct {
	// Contacts are the newly built records, in row order.
	Contacts []contact.Contact

	// Skipped counts rows discarded for having neither a name nor a method.
	Skipped int
}

// FromRows builds a new contact from each row. columns fixes the order in
// which method cells are read; cells whose header is not in columns are read
// after them, sorted by header. Every contact gets a fresh id and now as
// its creation time. Values are taken verbatim; only empty cells are dropped.
func FromRows(columns []string, rows []sheet.Row, now time.Time) Result {
	res := Result{Contacts: make([]contact.Contact, 0, len(rows))}
	for _, row := range rows {
		c, ok := fromRow(columns, row, now)
		if !ok {
			res.Skipped++
			continue
		}
		res.Contacts = append(res.Contacts, c)
	}
	return res
}

// FromTable is FromRows over a decoded table.
func FromTable(t *sheet.Table, now time.Time) Result {
	if t == nil {
		return Result{Contacts: []contact.Contact{}}
	}
	return FromRows(t.Columns, t.Rows, now)
}

func fromRow(columns []string, row sheet.Row, now time.Time) (contact.Contact, bool) {
	c := contact.Contact{
		ID:         contact.NewID(),
		Name:       row[HeaderName],
		Note:       row[HeaderNote],
		Bookmarked: row[HeaderBookmark] == Yes,
		Methods:    []contact.Method{},
		CreatedAt:  now,
	}

	visited := make(map[string]bool, len(row))
	addMethod := func(header string) {
		if visited[header] {
			return
		}
		visited[header] = true
		value, ok := row[header]
		if !ok || value == "" || isFixed(header) {
			return
		}
		c.Methods = append(c.Methods, contact.Method{Type: MethodType(header), Value: value})
	}

	for _, header := range columns {
		addMethod(header)
	}
	extra := make([]string, 0)
	for header := range row {
		if !visited[header] {
			extra = append(extra, header)
		}
	}
	sort.Strings(extra)
	for _, header := range extra {
		addMethod(header)
	}

	if c.Name == "" && len(c.Methods) == 0 {
		return contact.Contact{}, false
	}
	return c, true
}

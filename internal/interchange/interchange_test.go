package interchange

import (
	"bytes"
	"sort"
	"testing"
	"time"

	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/sheet"
)

var (
	created = time.Date(2024, 3, 1, 9, 5, 7, 0, time.UTC)
	later   = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	utc     = Options{Location: time.UTC}
)

func zhangSan() contact.Contact {
	return contact.Contact{
		ID:   "01HQZS",
		Name: "张三",
		Methods: []contact.Method{
			{Type: contact.MethodPhone, Value: "13800138000"},
			{Type: contact.MethodEmail, Value: "zhangsan@example.com"},
		},
		Note:       "朋友",
		Bookmarked: true,
		CreatedAt:  created,
	}
}

func TestToRows(t *testing.T) {
	rows := ToRows([]contact.Contact{zhangSan()}, utc)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]

	want := sheet.Row{
		HeaderName:     "张三",
		HeaderBookmark: Yes,
		HeaderNote:     "朋友",
		HeaderCreated:  "2024/3/1 09:05:07",
		"phone1":       "13800138000",
		"email2":       "zhangsan@example.com",
	}
	if len(row) != len(want) {
		t.Errorf("row = %v, want %v", row, want)
	}
	for k, v := range want {
		if row[k] != v {
			t.Errorf("row[%s] = %q, want %q", k, row[k], v)
		}
	}
}

func TestToRows_NotBookmarked(t *testing.T) {
	c := zhangSan()
	c.Bookmarked = false
	if got := ToRows([]contact.Contact{c}, utc)[0][HeaderBookmark]; got != No {
		t.Errorf("bookmark token = %q, want %q", got, No)
	}
}

func TestToRows_TimeLayout(t *testing.T) {
	opts := Options{TimeLayout: time.RFC3339, Location: time.FixedZone("CST", 8*3600)}
	got := ToRows([]contact.Contact{zhangSan()}, opts)[0][HeaderCreated]
	if got != "2024-03-01T17:05:07+08:00" {
		t.Errorf("created = %q", got)
	}
}

func TestToRows_IndexIsOverallPosition(t *testing.T) {
	c := contact.Contact{
		Name: "x",
		Methods: []contact.Method{
			{Type: contact.MethodPhone, Value: "1"},
			{Type: contact.MethodEmail, Value: "a@b.c"},
			{Type: contact.MethodPhone, Value: "3"},
		},
	}
	row := ToRows([]contact.Contact{c}, utc)[0]
	for _, col := range []string{"phone1", "email2", "phone3"} {
		if _, ok := row[col]; !ok {
			t.Errorf("missing column %s in %v", col, row)
		}
	}
	if _, ok := row["phone2"]; ok {
		t.Error("per-type counter used: phone2 present")
	}
}

func TestColumns_Union(t *testing.T) {
	a := contact.Contact{Methods: []contact.Method{{Type: contact.MethodPhone, Value: "1"}}}
	b := contact.Contact{Methods: []contact.Method{
		{Type: contact.MethodWeChat, Value: "w"},
		{Type: contact.MethodQQ, Value: "q"},
	}}
	c := contact.Contact{Methods: []contact.Method{{Type: contact.MethodPhone, Value: "2"}}}

	got := Columns([]contact.Contact{a, b, c})
	want := []string{HeaderName, HeaderBookmark, HeaderNote, HeaderCreated, "phone1", "wechat1", "qq2"}
	if len(got) != len(want) {
		t.Fatalf("Columns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Columns()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMethodType(t *testing.T) {
	tests := map[string]contact.MethodType{
		"wechat2":  "wechat",
		"phone10":  "phone",
		"email":    "email",
		"qq1":      "qq",
		"address1": "address",
		"2":        "",
		"line2a":   "line2a",
		"电话1":      "电话",
	}
	for in, want := range tests {
		if got := MethodType(in); got != want {
			t.Errorf("MethodType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFromRows(t *testing.T) {
	columns := []string{HeaderName, HeaderBookmark, HeaderNote, HeaderCreated, "phone1", "wechat2"}
	rows := []sheet.Row{
		{HeaderName: "李四", HeaderBookmark: No, HeaderNote: "同事", HeaderCreated: "2024/3/1 09:05:07", "phone1": "13900139000", "wechat2": "lisi123"},
		{HeaderName: "", "phone1": ""},
		{"wechat2": " spaced "},
		{HeaderName: "Only name", HeaderBookmark: "yes"},
	}

	res := FromRows(columns, rows, later)
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	if len(res.Contacts) != 3 {
		t.Fatalf("Contacts = %d, want 3", len(res.Contacts))
	}

	li := res.Contacts[0]
	if li.Name != "李四" || li.Note != "同事" || li.Bookmarked {
		t.Errorf("contact 0 = %+v", li)
	}
	if !li.CreatedAt.Equal(later) {
		t.Errorf("CreatedAt = %v, want import time", li.CreatedAt)
	}
	if len(li.Methods) != 2 ||
		li.Methods[0] != (contact.Method{Type: contact.MethodPhone, Value: "13900139000"}) ||
		li.Methods[1] != (contact.Method{Type: contact.MethodWeChat, Value: "lisi123"}) {
		t.Errorf("Methods = %+v", li.Methods)
	}

	unnamed := res.Contacts[1]
	if unnamed.Name != "" || len(unnamed.Methods) != 1 || unnamed.Methods[0].Value != " spaced " {
		t.Errorf("unnamed contact = %+v, want verbatim value kept", unnamed)
	}

	if res.Contacts[2].Bookmarked {
		t.Error("only the exact yes token marks a bookmark")
	}
	if res.Contacts[2].Methods == nil {
		t.Error("Methods is nil, want empty slice")
	}

	ids := map[string]bool{}
	for _, c := range res.Contacts {
		if c.ID == "" || ids[c.ID] {
			t.Errorf("bad or duplicate id %q", c.ID)
		}
		ids[c.ID] = true
	}
}

func TestFromRows_CreatedColumnIsNeverAMethod(t *testing.T) {
	res := FromRows(nil, []sheet.Row{{HeaderCreated: "2024/3/1 09:05:07"}}, later)
	if len(res.Contacts) != 0 || res.Skipped != 1 {
		t.Errorf("row with only a creation time was kept: %+v", res)
	}
}

func TestFromRows_EmptyRowDiscarded(t *testing.T) {
	res := FromRows([]string{HeaderName, "phone1"}, []sheet.Row{{HeaderName: "", "phone1": ""}}, later)
	if len(res.Contacts) != 0 {
		t.Errorf("Contacts = %+v, want none", res.Contacts)
	}
}

func TestFromRows_UnlistedHeadersSorted(t *testing.T) {
	row := sheet.Row{HeaderName: "x", "qq3": "q", "email1": "e"}
	res := FromRows(nil, []sheet.Row{row}, later)
	got := res.Contacts[0].Methods
	if len(got) != 2 || got[0].Type != contact.MethodEmail || got[1].Type != contact.MethodQQ {
		t.Errorf("Methods = %+v", got)
	}
}

func TestFromTable_Nil(t *testing.T) {
	res := FromTable(nil, later)
	if res.Contacts == nil || len(res.Contacts) != 0 {
		t.Errorf("FromTable(nil) = %+v", res)
	}
}

type pair struct {
	Type  contact.MethodType
	Value string
}

func methodPairs(c contact.Contact) []pair {
	out := make([]pair, 0, len(c.Methods))
	for _, m := range c.Methods {
		out = append(out, pair{m.Type, m.Value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func TestRoundTrip_PreservesContentNotIdentity(t *testing.T) {
	original := []contact.Contact{
		zhangSan(),
		{
			ID:   "01HQLS",
			Name: "李四",
			Methods: []contact.Method{
				{Type: contact.MethodPhone, Value: "13900139000"},
				{Type: "telegram", Value: "@lisi"},
				{Type: contact.MethodPhone, Value: "010-1234"},
			},
			Note:      "同事",
			Avatar:    "data:image/png;base64,AAAA",
			CreatedAt: created,
		},
	}

	for _, format := range []sheet.Format{sheet.FormatXLSX, sheet.FormatCSV} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := sheet.Encode(&buf, ToTable(original, utc), sheet.EncodeOptions{Format: format, SheetName: "联系人列表"}); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			table, err := sheet.Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			res := FromTable(table, later)
			if len(res.Contacts) != len(original) {
				t.Fatalf("imported %d contacts, want %d", len(res.Contacts), len(original))
			}
			for i, want := range original {
				got := res.Contacts[i]
				if got.Name != want.Name || got.Note != want.Note || got.Bookmarked != want.Bookmarked {
					t.Errorf("contact %d = %+v, want content of %+v", i, got, want)
				}
				wantPairs, gotPairs := methodPairs(want), methodPairs(got)
				if len(gotPairs) != len(wantPairs) {
					t.Fatalf("contact %d methods = %v, want %v", i, gotPairs, wantPairs)
				}
				for j := range wantPairs {
					if gotPairs[j] != wantPairs[j] {
						t.Errorf("contact %d method %d = %v, want %v", i, j, gotPairs[j], wantPairs[j])
					}
				}
				if got.ID == want.ID {
					t.Errorf("contact %d kept its id", i)
				}
				if got.CreatedAt.Equal(want.CreatedAt) {
					t.Errorf("contact %d kept its creation time", i)
				}
				if got.Avatar != "" {
					t.Errorf("contact %d avatar round-tripped", i)
				}
			}
		})
	}
}

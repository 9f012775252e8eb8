package contact

// MethodType tags a contact method. The set is open: well-known types get a
// display label, anything else (e.g. a header read from an imported sheet) is
// kept verbatim.
type MethodType string

// Well-known method types offered by the entry forms.
const (
	MethodPhone   MethodType = "phone"
	MethodEmail   MethodType = "email"
	MethodAddress MethodType = "address"
	MethodWeChat  MethodType = "wechat"
	MethodQQ      MethodType = "qq"
)

var knownLabels = map[MethodType]string{
	MethodPhone:   "电话",
	MethodEmail:   "邮箱",
	MethodAddress: "地址",
	MethodWeChat:  "微信",
	MethodQQ:      "QQ",
}

// KnownMethodTypes returns the well-known types in form order.
func KnownMethodTypes() []MethodType {
	return []MethodType{MethodPhone, MethodEmail, MethodAddress, MethodWeChat, MethodQQ}
}

// IsKnown reports whether t is one of the well-known types.
func (t MethodType) IsKnown() bool {
	_, ok := knownLabels[t]
	return ok
}

// Label returns the display label.
func (t MethodType) Label() string {
	if label, ok := knownLabels[t]; ok {
		return label
	}
	if t == "" {
		return "other"
	}
	return string(t)
}

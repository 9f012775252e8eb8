package contact

import "time"

// Seed returns the sample contacts written on first run.
func Seed(now time.Time) []Contact {
	return []Contact{
		{
			ID:   NewID(),
			Name: "张三",
			Methods: []Method{
				{Type: MethodPhone, Value: "13800138000"},
				{Type: MethodEmail, Value: "zhangsan@example.com"},
			},
			Note:       "朋友",
			Bookmarked: true,
			CreatedAt:  now,
		},
		{
			ID:   NewID(),
			Name: "李四",
			Methods: []Method{
				{Type: MethodPhone, Value: "13900139000"},
				{Type: MethodWeChat, Value: "lisi123"},
			},
			Note:      "同事",
			CreatedAt: now,
		},
	}
}

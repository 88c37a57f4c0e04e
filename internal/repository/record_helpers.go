package repository

import (
	"fmt"
	"sort"
	"time"

	"bloggenie-server/internal/domain"
)

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok && val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getInt(data map[string]interface{}, key string) int {
	return int(getInt64(data, key))
}

func getInt64(data map[string]interface{}, key string) int64 {
	if val, ok := data[key]; ok && val != nil {
		switch v := val.(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}

func getBool(data map[string]interface{}, key string) bool {
	if val, ok := data[key]; ok && val != nil {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

func getStringArray(data map[string]interface{}, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func getTime(data map[string]interface{}, key string) time.Time {
	switch v := data[key].(type) {
	case time.Time:
		return v
	case string:
		if v == "" {
			return time.Time{}
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getTimePointer(data map[string]interface{}, key string) *time.Time {
	t := getTime(data, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// storedTimeLayout is fixed width in UTC so stored timestamps sort lexically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedTimeLayout)
}

func stringsToInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func cloneRecord(r domain.Record) domain.Record {
	out := make(domain.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func matchesFilter(r domain.Record, filter map[string]interface{}) bool {
	for k, want := range filter {
		if fmt.Sprint(r[k]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// applyQuery filters, orders and limits records in place for backends that
// cannot push the query down.
func applyQuery(records []domain.Record, q domain.Query) []domain.Record {
	out := records[:0]
	for _, r := range records {
		if matchesFilter(r, q.Filter) {
			out = append(out, r)
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			if q.Descending {
				return lessValue(out[j][q.OrderBy], out[i][q.OrderBy])
			}
			return lessValue(out[i][q.OrderBy], out[j][q.OrderBy])
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// lessValue orders numbers numerically and timestamps chronologically, so rows
// written before storedTimeLayout existed still sort correctly.
func lessValue(a, b interface{}) bool {
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			return x < y
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	if ta, err := time.Parse(time.RFC3339Nano, as); err == nil {
		if tb, err := time.Parse(time.RFC3339Nano, bs); err == nil {
			return ta.Before(tb)
		}
	}
	return as < bs
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

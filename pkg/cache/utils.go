package cache

import (
	"fmt"
	"strings"
	"time"
)

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// GenerateKeyWithParams creates a cache key with multiple parameters. Times
// are rendered as calendar days so keys stay stable within a day.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, param := range params {
		b.WriteByte(':')
		switch v := param.(type) {
		case time.Time:
			b.WriteString(v.UTC().Format("2006-01-02"))
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	return b.String()
}

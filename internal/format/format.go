package format

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/justfishin/internal/storage"
)

// Bucket renders the one-line bucket summary shown before each prompt.
func Bucket(name string, items []storage.ObjectInfo) string {
	return fmt.Sprintf("[Bucket %s, %d items]", name, len(items))
}

// Contents renders one "* key" line per item, in listing order.
func Contents(items []storage.ObjectInfo) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "* "+item.Key)
	}
	return strings.Join(lines, "\n")
}

// Bytes renders a byte count in mebibytes with two decimal places.
func Bytes(n int64) string {
	return fmt.Sprintf("%.2fMiB", float64(n)/1024.0/1024.0)
}

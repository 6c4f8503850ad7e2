package batchloader

import (
	"fmt"
	"strings"
)

const delimiter = "\x1f"

// runKey identifies a run of keys for cross-instance coalescing.
// The key type is encoded into the string, so runs of different key types
// with the same textual keys will not collide.
func runKey[K any](keys []K, keyString func(K) string) string {
	var zero K
	var sb strings.Builder
	fmt.Fprintf(&sb, "%T:", zero)
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(delimiter)
		}
		sb.WriteString(keyString(k))
	}
	return sb.String()
}

func defaultKeyString[K any](k K) string {
	return fmt.Sprint(k)
}

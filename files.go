/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
)

// humanReadableSize formats a byte count with SI prefixes.
func humanReadableSize(bytes int64) string {
	const unit = 1000

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	size := float64(bytes)
	prefixes := "kMGTPE"
	i := -1
	for size >= unit && i < len(prefixes)-1 {
		size /= unit
		i++
	}

	return fmt.Sprintf("%.1f %cB", size, prefixes[i])
}

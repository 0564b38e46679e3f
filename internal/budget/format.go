package budget

import "fmt"

// FormatSize renders a byte count the way budget messages print it,
// e.g. "512 bytes", "85.94 kB" or "1.10 MB".
func FormatSize(bytes float64) string {
	const (
		kB = 1024
		MB = 1024 * kB
		GB = 1024 * MB
	)
	switch {
	case bytes == 0:
		return "0 bytes"
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", bytes/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", bytes/MB)
	case bytes >= kB:
		return fmt.Sprintf("%.2f kB", bytes/kB)
	default:
		return fmt.Sprintf("%.0f bytes", bytes)
	}
}

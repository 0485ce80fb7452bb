package utils

import "strings"

// MaskCode hides the middle of a caller-supplied code for logging.
// Example: "SUMMER2024" -> "SU***24"
func MaskCode(code string) string {
	code = strings.TrimSpace(code)
	r := []rune(code)
	if len(r) <= 4 {
		return "***"
	}
	return string(r[:2]) + "***" + string(r[len(r)-2:])
}

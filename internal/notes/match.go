package notes

import "strings"

// MatchOptions returns the options containing buffer, case-insensitively,
// in their original order. An empty buffer matches everything.
func MatchOptions(options []string, buffer string) []string {
	needle := strings.ToLower(strings.TrimSpace(buffer))
	out := make([]string, 0, len(options))
	for _, option := range options {
		if needle == "" || strings.Contains(strings.ToLower(option), needle) {
			out = append(out, option)
		}
	}
	return out
}

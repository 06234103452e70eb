package normalization

import (
	"strings"
)

// Email lower-cases and trims an email address. Empty input stays empty.
func Email(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Phone keeps digits only, so "+1 (555) 010-9999", "15550109999" and
// "1.555.010.9999" all normalize to the same key. A leading + is dropped.
func Phone(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Name lower-cases, trims, and collapses internal whitespace runs to a
// single space, so display names compare on content rather than formatting.
func Name(input string) string {
	return strings.Join(strings.Fields(strings.ToLower(input)), " ")
}

// Emails maps Email over vals, dropping empties and repeats.
func Emails(vals []string) []string {
	return normalizeAll(vals, Email)
}

// Phones maps Phone over vals, dropping empties and repeats.
func Phones(vals []string) []string {
	return normalizeAll(vals, Phone)
}

// normalizeAll keeps the first occurrence of each normalized value so
// identifier lists stay duplicate-free in first-seen order.
func normalizeAll(vals []string, fn func(string) string) []string {
	if len(vals) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		n := fn(v)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

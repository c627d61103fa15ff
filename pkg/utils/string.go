package utils

import "strings"

/*
JoinURL appends path to base without doubling or dropping the slash
between them.
*/
func JoinURL(base string, path string) string {
	if path == "" {
		return base
	}

	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Truncate shortens s to at most n runes for log output.
func Truncate(s string, n int) string {
	runes := []rune(s)

	if n <= 0 || len(runes) <= n {
		return s
	}

	return string(runes[:n]) + "…"
}

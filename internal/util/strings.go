package util

import "strings"

// SafeTruncate returns at most maxLen bytes of s. Used to log a recognisable
// prefix of session IDs without the full value. Negative maxLen yields "".
func SafeTruncate(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// NormalizeURL strips trailing slashes so base URLs compare and join consistently.
//
//	NormalizeURL("https://api.github.com/")  // "https://api.github.com"
func NormalizeURL(url string) string {
	return strings.TrimRight(url, "/")
}

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, path string) string {
	return NormalizeURL(base) + "/" + strings.TrimLeft(path, "/")
}

package util

import "testing"

func TestSafeTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "shorter than max", input: "short", maxLen: 10, want: "short"},
		{name: "exact length", input: "exact", maxLen: 5, want: "exact"},
		{name: "truncated", input: "session-abcdef", maxLen: 8, want: "session-"},
		{name: "empty input", input: "", maxLen: 4, want: ""},
		{name: "zero max", input: "value", maxLen: 0, want: ""},
		{name: "negative max", input: "value", maxLen: -1, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeTruncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("SafeTruncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "https://api.github.com/", want: "https://api.github.com"},
		{input: "https://api.github.com", want: "https://api.github.com"},
		{input: "https://example.com///", want: "https://example.com"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.input); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{base: "https://api.github.com/", path: "/user", want: "https://api.github.com/user"},
		{base: "https://api.github.com", path: "user", want: "https://api.github.com/user"},
		{base: "https://ghe.example.com/api/v3/", path: "/repos/a/b/forks", want: "https://ghe.example.com/api/v3/repos/a/b/forks"},
	}

	for _, tt := range tests {
		if got := JoinURL(tt.base, tt.path); got != tt.want {
			t.Errorf("JoinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

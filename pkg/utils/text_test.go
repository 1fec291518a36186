package utils

import "testing"

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 3); got != "hel" {
		t.Errorf("Truncate: got %q", got)
	}
	if got := Truncate("hi", 10); got != "hi" {
		t.Errorf("Truncate short: got %q", got)
	}
	if got := Truncate("hi", 0); got != "hi" {
		t.Errorf("Truncate zero: got %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\nb", "a b"},
		{"a\r\n\tb   c", "a b c"},
		{"  leading and trailing \n", "leading and trailing"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := CollapseWhitespace(tt.in); got != tt.want {
			t.Errorf("CollapseWhitespace(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"a/b\\c:d*e", "a-b-c-d-e"},
		{"what?\"<>|", "what"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ProQuest DDA", "proquest_dda"},
		{"EBSCO: Purchased (2019)", "ebsco__purchased__2019"},
		{"--oapen--", "oapen"},
		{"   ", "unknown"},
		{"***", "unknown"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/data/in/ebc_2024-05.mrc", "ebc_2024-05"},
		{"batch.tar.mrc", "batch.tar"},
		{"noext", "noext"},
		{"", "unknown"},
		{"/", "unknown"},
		{"weird:name?.mrc", "weird-name"},
	}
	for _, tt := range tests {
		if got := FileStem(tt.in); got != tt.want {
			t.Errorf("FileStem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

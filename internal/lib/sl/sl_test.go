package sl

import (
	"errors"
	"testing"
)

func TestSecret(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"", "*****"},
		{"abc", "*****"},
		{"abcde", "*****"},
		{"abcdef123", "abcde*****"},
	}
	for _, tt := range tests {
		if got := Secret("k", tt.value).Value.String(); got != tt.want {
			t.Errorf("Secret(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestErr(t *testing.T) {
	if got := Err(errors.New("boom")).Value.String(); got != "boom" {
		t.Errorf("Err = %q, want boom", got)
	}
	if got := Err(nil).Value.String(); got != "" {
		t.Errorf("Err(nil) = %q, want empty", got)
	}
}

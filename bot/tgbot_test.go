package bot

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"status: ativo -> suspenso", "status: ativo \\-\\> suspenso"},
		{"SCHOOL_STATUS_CHANGED", "SCHOOL\\_STATUS\\_CHANGED"},
		{"a.b!c(d)", "a\\.b\\!c\\(d\\)"},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

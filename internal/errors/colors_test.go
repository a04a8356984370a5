package errors

import "testing"

func TestDetectColorSupport(t *testing.T) {
	tests := []struct {
		name    string
		noColor string
		term    string
		want    bool
	}{
		{"NO_COLOR disables", "1", "xterm-256color", false},
		{"empty TERM disables", "", "", false},
		{"dumb TERM disables", "", "dumb", false},
		{"xterm enables", "", "xterm-256color", true},
		{"plain vt100 enables", "", "vt100", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("TERM", tt.term)
			if got := detectColorSupport(); got != tt.want {
				t.Errorf("detectColorSupport() = %v, want %v", got, tt.want)
			}
		})
	}
}

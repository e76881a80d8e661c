package app

import "testing"

func TestDefaultLedgerPath(t *testing.T) {
	tests := []struct {
		workspace string
		want      string
	}{
		{"https://myteam.slack.com", ".slackmoji.myteam.db"},
		{"https://other.slack.com/", ".slackmoji.other.db"},
		{"", ".slackmoji.default.db"},
	}
	for _, tt := range tests {
		if got := DefaultLedgerPath(tt.workspace); got != tt.want {
			t.Errorf("DefaultLedgerPath(%q) = %q, want %q", tt.workspace, got, tt.want)
		}
	}
}

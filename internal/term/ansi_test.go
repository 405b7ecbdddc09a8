package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "hello world", "hello world"},
		{"color", "\x1b[31mred\x1b[0m", "red"},
		{"bold", "\x1b[1mbold\x1b[0m", "bold"},
		{"stacked codes", "\x1b[1m\x1b[32mgreen bold\x1b[0m normal", "green bold normal"},
		{"cursor position", "\x1b[10;5Htext", "text"},
		{"mixed", "prefix\x1b[31m red \x1b[0mmiddle\x1b[34m blue \x1b[0msuffix", "prefix red middle blue suffix"},
		{"osc bel", "\x1b]0;window title\x07after", "after"},
		{"osc st", "\x1b]8;;http://example.com\x1b\\link", "link"},
		{"trailing esc", "text\x1b", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripANSI(tt.input))
		})
	}
}

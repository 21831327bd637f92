package common

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"ascii truncation", "hello world", 5, "hello"},
		{"zero limit empties", "hello", 0, ""},
		{"negative limit empties", "hello", -1, ""},
		{"multibyte counted as runes", "héllo wörld", 7, "héllo w"},
		{"cjk truncation", "日本語のテキスト", 3, "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRunes(tt.input, tt.limit))
		})
	}
}

func TestTruncateRunesNeverSplitsCharacters(t *testing.T) {
	s := strings.Repeat("é", 300) // 2 bytes per rune
	for _, limit := range []int{1, 199, 200, 299, 300, 301} {
		got := TruncateRunes(s, limit)
		assert.True(t, utf8.ValidString(got), "limit %d produced invalid UTF-8", limit)
		if limit <= 300 {
			assert.Equal(t, limit, utf8.RuneCountInString(got))
		}
	}
}

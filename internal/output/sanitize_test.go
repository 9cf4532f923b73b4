package output

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTerminal(t *testing.T) {
	for name, tc := range map[string]struct {
		in   string
		want string
		cell string
	}{
		"plain":        {in: "nginx: worker", want: "nginx: worker", cell: "nginx: worker"},
		"escape":       {in: "hi\x1b[31mred", want: `hi\x1b[31mred`, cell: `hi\x1b[31mred`},
		"nul":          {in: "nul:\x00", want: `nul:\x00`, cell: `nul:\x00`},
		"invalid":      {in: "bad:\xff", want: `bad:\xff`, cell: `bad:\xff`},
		"layout":       {in: "a\tb\nc", want: "a\tb\nc", cell: `a\tb\nc`},
		"bell":         {in: "ding\a", want: `ding\a`, cell: `ding\a`},
		"c1 control":   {in: "x\u0085y", want: `x\u0085y`, cell: `x\u0085y`},
		"unicode kept": {in: "café → ✓", want: "café → ✓", cell: "café → ✓"},
	} {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, SanitizeTerminal(tc.in))
			assert.Equal(t, tc.cell, SanitizeCell(tc.in))
		})
	}
}

func FuzzSanitizeCell(f *testing.F) {
	for _, seed := range []string{"", "plain", "\x1b[2J", "\xff\xfe", "tab\there", " ", "🙂\x00"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		got := SanitizeCell(in)
		if !utf8.ValidString(got) {
			t.Fatalf("SanitizeCell(%q) = %q, not valid UTF-8", in, got)
		}
		if strings.IndexFunc(got, unicode.IsControl) >= 0 {
			t.Fatalf("SanitizeCell(%q) = %q, still has control characters", in, got)
		}
	})
}

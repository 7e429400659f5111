package lefdef

import (
	"strings"
	"testing"
)

func collect(t *Tokenizer, ignoreEOL bool) []string {
	var out []string
	for {
		tok := t.Next(ignoreEOL)
		if tok == "" {
			return out
		}
		out = append(out, tok)
	}
}

func TestTokenizerBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "whitespace split",
			input: "LAYER metal1 ;\n",
			want:  []string{"LAYER", "metal1", ";"},
		},
		{
			name:  "leading whitespace and tabs",
			input: "   \t TYPE ROUTING ;\n",
			want:  []string{"TYPE", "ROUTING", ";"},
		},
		{
			name:  "comment line skipped",
			input: "# header comment\nVERSION 5.6 ;\n",
			want:  []string{"VERSION", "5.6", ";"},
		},
		{
			name:  "trailing comment dropped",
			input: "WIDTH 0.2 ; # preferred width\nEND\n",
			want:  []string{"WIDTH", "0.2", ";", "END"},
		},
		{
			name:  "blank lines skipped",
			input: "\n\n  \nEND LIBRARY\n",
			want:  []string{"END", "LIBRARY"},
		},
		{
			name:  "no trailing newline",
			input: "END LIBRARY",
			want:  []string{"END", "LIBRARY"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := NewTokenizer(strings.NewReader(tt.input))
			got := collect(tok, true)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("token %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenizerQuoted(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("PROPERTY note \"a b c\" ;\n"))
	got := collect(tok, true)
	want := []string{"PROPERTY", "note", `"a b c"`, ";"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizerQuotedSpansLines(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("NOTE \"first\nsecond\" DONE\n"))
	got := collect(tok, true)
	if len(got) != 3 {
		t.Fatalf("got %d tokens %v, want 3", len(got), got)
	}
	if got[1] != "\"first\nsecond\"" {
		t.Fatalf("quoted token: got %q", got[1])
	}
	if got[2] != "DONE" {
		t.Fatalf("token after quote: got %q", got[2])
	}
}

func TestTokenizerEOLToken(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("END\nLIBRARY extra\n"))
	got := collect(tok, false)
	want := []string{EOL, "END", EOL, "LIBRARY", "extra"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizerLineCount(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("# skip\nA\nB\n"))
	tok.Next(true)
	if tok.Line != 2 {
		t.Fatalf("after A: line %d, want 2", tok.Line)
	}
	tok.Next(true)
	if tok.Line != 3 {
		t.Fatalf("after B: line %d, want 3", tok.Line)
	}
}

func TestEndStatement(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("junk more junk ;\nNEXT\n"))
	tok.EndStatement()
	if got := tok.Next(true); got != "NEXT" {
		t.Fatalf("after EndStatement: got %q, want NEXT", got)
	}
}

func TestSkipSection(t *testing.T) {
	input := "  PITCH 0.5 ;\n  WIDTH 0.2 ;\nEND metal9\nVIA\n"
	tok := NewTokenizer(strings.NewReader(input))
	var diag Diagnostics
	tok.SkipSection(&diag, "metal9")
	if got := tok.Next(true); got != "VIA" {
		t.Fatalf("after SkipSection: got %q, want VIA", got)
	}
	if diag.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", diag.Errors())
	}
}

func TestSkipSectionMissingEnd(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("PITCH 0.5 ;\n"))
	diag := Diagnostics{Out: &strings.Builder{}}
	tok.SkipSection(&diag, "metal1")
	if diag.Errors() != 1 {
		t.Fatalf("errors = %d, want 1", diag.Errors())
	}
}

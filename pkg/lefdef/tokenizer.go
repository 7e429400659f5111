// Package lefdef provides the low-level parsing machinery shared by the
// technology (LEF) and design (DEF) file readers: a line-buffered tokenizer,
// abbreviation-tolerant keyword lookup, and the error/warning accounting
// both readers report through.
package lefdef

import (
	"bufio"
	"io"
	"strings"
)

// EOL is the synthetic token returned once per input line when the caller
// asks Next not to ignore line boundaries.
const EOL = "\n"

// Tokenizer splits a LEF or DEF stream into whitespace-delimited tokens.
// A '#' preceded only by whitespace comments out the rest of the line.
// A double-quoted token runs until an unescaped closing quote and may span
// physical lines; the quotes are kept in the returned token.
type Tokenizer struct {
	r    *bufio.Reader
	rest string // unconsumed tail of the current line
	eof  bool

	// Line is the number of the line most recently read, used for
	// diagnostics.
	Line int
}

func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{r: bufio.NewReader(r)}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

// readLine fetches the next physical line without its trailing newline.
// Returns false at end of stream.
func (t *Tokenizer) readLine() (string, bool) {
	if t.eof {
		return "", false
	}
	line, err := t.r.ReadString('\n')
	if err != nil {
		t.eof = true
		if len(line) == 0 {
			return "", false
		}
	}
	return strings.TrimRight(line, "\n"), true
}

// Next returns the next token, or "" at end of stream. If ignoreEOL is
// false, the synthetic EOL token is returned once before the first token of
// each new line; callers use this to detect unterminated statements.
// A "" result means the stream is exhausted or unreadable; callers recover
// by scanning to the next statement terminator.
func (t *Tokenizer) Next(ignoreEOL bool) string {
	if t.rest == "" {
		for {
			line, ok := t.readLine()
			if !ok {
				return ""
			}
			t.Line++
			i := 0
			for i < len(line) && isSpace(line[i]) {
				i++
			}
			if i < len(line) && line[i] != '#' {
				t.rest = line[i:]
				break
			}
		}
		if !ignoreEOL {
			return EOL
		}
	}

	var tok string
	if t.rest[0] == '"' {
		// Quoted material is one token, quotes included.  The quote
		// may close on a later physical line.
		i := 1
		for {
			for i < len(t.rest) {
				if t.rest[i] == '"' && t.rest[i-1] != '\\' {
					break
				}
				i++
			}
			if i < len(t.rest) {
				i++
				break
			}
			line, ok := t.readLine()
			if !ok {
				return ""
			}
			t.rest += "\n" + line
		}
		tok = t.rest[:i]
		t.rest = t.rest[i:]
	} else {
		i := 0
		for i < len(t.rest) && !isSpace(t.rest[i]) {
			i++
		}
		tok = t.rest[:i]
		t.rest = t.rest[i:]
	}

	j := 0
	for j < len(t.rest) && isSpace(t.rest[j]) {
		j++
	}
	t.rest = t.rest[j:]
	if t.rest != "" && t.rest[0] == '#' {
		t.rest = ""
	}
	return tok
}

// EndStatement consumes tokens through the next ';' terminator.  Used to
// resynchronize after a malformed statement.
func (t *Tokenizer) EndStatement() {
	for {
		tok := t.Next(true)
		if tok == "" || tok == ";" {
			return
		}
	}
}

// ParseEndStatement checks the token following an END keyword.  With a
// non-empty match the next token must equal it (case-insensitive); with an
// empty match the END must stand alone on its line.
func (t *Tokenizer) ParseEndStatement(diag *Diagnostics, match string) bool {
	ignoreEOL := match != ""
	tok := t.Next(ignoreEOL)
	if tok == "" {
		diag.Error(t.Line, "Bad file read while looking for END statement\n")
		return false
	}
	if tok == EOL && match == "" {
		return true
	}
	return LookupFull(tok, []string{match}) == 0
}

// SkipSection discards input through "END <section>".  An "ENDEXT" token
// closes a "BEGINEXT" section.
func (t *Tokenizer) SkipSection(diag *Diagnostics, section string) {
	endSection := []string{"END", "ENDEXT"}
	for {
		tok := t.Next(true)
		if tok == "" {
			break
		}
		switch Lookup(tok, endSection) {
		case 0:
			if t.ParseEndStatement(diag, section) {
				return
			}
		case 1:
			if section == "BEGINEXT" {
				return
			}
		}
	}
	diag.Error(t.Line, "Section %s has no END record!\n", section)
}

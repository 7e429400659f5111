package lefdef

import "strings"

// Lookup results for tokens that do not resolve to a single table entry.
const (
	Ambiguous = -1
	NotFound  = -2
)

// Lookup finds str in a keyword table, ignoring case and accepting any
// unambiguous abbreviation.  An exact match always wins over a prefix
// match.  Table entries are significant only up to the first blank, so a
// table may carry usage text after the keyword.  Returns the index of the
// match, Ambiguous, or NotFound.
func Lookup(str string, table []string) int {
	match := NotFound
	for pos, entry := range table {
		i := 0
		for i < len(str) && i < len(entry) && entry[i] != ' ' &&
			lowerByte(entry[i]) == lowerByte(str[i]) {
			i++
		}
		if i < len(str) {
			continue
		}
		if i == len(entry) || entry[i] == ' ' {
			// exact
			return pos
		}
		if match == NotFound {
			match = pos
		} else {
			match = Ambiguous
		}
	}
	return match
}

// LookupFull is the strict variant of Lookup: case-insensitive, no
// abbreviations.  Returns the index of the match or -1.
func LookupFull(name string, table []string) int {
	for pos, entry := range table {
		if strings.EqualFold(name, entry) {
			return pos
		}
	}
	return -1
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

package lefdef

import "testing"

func TestLookup(t *testing.T) {
	table := []string{"VERSION", "BUSBITCHARS", "DIVIDERCHAR", "UNITS", "USE"}
	tests := []struct {
		token string
		want  int
	}{
		{"VERSION", 0},
		{"version", 0},
		{"VERS", 0},
		{"v", 0},
		{"BUSBITCHARS", 1},
		{"bus", 1},
		{"U", Ambiguous},  // UNITS or USE
		{"UN", 3},
		{"USE", 4},
		{"us", 4}, // exact prefix of USE only
		{"NOPE", NotFound},
		{"VERSIONS", NotFound}, // longer than any entry
	}
	for _, tt := range tests {
		if got := Lookup(tt.token, table); got != tt.want {
			t.Errorf("Lookup(%q) = %d, want %d", tt.token, got, tt.want)
		}
	}
}

func TestLookupExactBeatsPrefix(t *testing.T) {
	// "END" is both an entry and a prefix of "ENDEXT"; the exact match wins.
	table := []string{"ENDEXT", "END"}
	if got := Lookup("END", table); got != 1 {
		t.Fatalf("Lookup(END) = %d, want 1", got)
	}
	if got := Lookup("EN", table); got != Ambiguous {
		t.Fatalf("Lookup(EN) = %d, want Ambiguous", got)
	}
}

func TestLookupEntryUsageText(t *testing.T) {
	// Entries are significant up to the first blank.
	table := []string{"DO count", "STEP size"}
	if got := Lookup("DO", table); got != 0 {
		t.Fatalf("Lookup(DO) = %d, want 0", got)
	}
	if got := Lookup("STEP", table); got != 1 {
		t.Fatalf("Lookup(STEP) = %d, want 1", got)
	}
}

func TestLookupFull(t *testing.T) {
	table := []string{"metal1", "metal2"}
	if got := LookupFull("METAL2", table); got != 1 {
		t.Fatalf("LookupFull(METAL2) = %d, want 1", got)
	}
	if got := LookupFull("metal", table); got != -1 {
		t.Fatalf("LookupFull(metal) = %d, want -1", got)
	}
}

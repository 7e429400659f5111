package lefdef

import (
	"fmt"
	"io"
	"os"
)

// DefaultMaxMessages caps how many error/warning messages are printed per
// report cycle.  Counting continues past the cap.
const DefaultMaxMessages = 100

// Diagnostics accumulates classified parse conditions for one reader.
// Errors are fatal to the statement that raised them, warnings are not;
// neither stops the reader.  Report is the only way the totals are
// surfaced or reset.
type Diagnostics struct {
	// Prefix identifies the reader in messages, "LEF" or "DEF".
	Prefix string
	// Max caps printed messages; zero means DefaultMaxMessages.
	Max int
	// Out receives messages; nil means os.Stdout.
	Out io.Writer

	errors   int
	warnings int
}

func (d *Diagnostics) writer() io.Writer {
	if d.Out == nil {
		return os.Stdout
	}
	return d.Out
}

func (d *Diagnostics) max() int {
	if d.Max == 0 {
		return DefaultMaxMessages
	}
	return d.Max
}

func (d *Diagnostics) emit(line int, format string, args ...any) {
	total := d.errors + d.warnings
	if total < d.max() {
		fmt.Fprintf(d.writer(), "%s Read, Line %d: ", d.Prefix, line)
		fmt.Fprintf(d.writer(), format, args...)
	} else if total == d.max() {
		fmt.Fprintf(d.writer(), "%s Read:  Further errors/warnings will not be reported.\n",
			d.Prefix)
	}
}

// Error records a fatal condition on the given input line.
func (d *Diagnostics) Error(line int, format string, args ...any) {
	d.emit(line, format, args...)
	d.errors++
}

// Warn records a recoverable condition on the given input line.
func (d *Diagnostics) Warn(line int, format string, args ...any) {
	d.emit(line, format, args...)
	d.warnings++
}

// Errors returns the fatal count since the last Report.
func (d *Diagnostics) Errors() int { return d.errors }

// Warnings returns the nonfatal count since the last Report.
func (d *Diagnostics) Warnings() int { return d.warnings }

// Report prints the cumulative totals, if any, and resets both counters.
func (d *Diagnostics) Report() {
	if d.errors+d.warnings == 0 {
		return
	}
	fmt.Fprintf(d.writer(), "%s Read: encountered %d error%s and %d warning%s total.\n",
		d.Prefix,
		d.errors, plural(d.errors),
		d.warnings, plural(d.warnings))
	d.errors = 0
	d.warnings = 0
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

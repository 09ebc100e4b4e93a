// Package terminal renders readings as a fixed block of labelled lines,
// optionally redrawn in place with VT100 control sequences.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/itohio/adcmon/pkg/convert"
	"github.com/itohio/adcmon/pkg/output"
)

// VT100 control sequences.
const (
	ClearScreen     = "\033[2J"
	CursorHome      = "\033[H"
	ClearScrollback = "\033[3J"
	ClearToEOL      = "\033[K"
)

// CursorUp moves the cursor up n lines.
func CursorUp(n int) string { return fmt.Sprintf("\033[%dA", n) }

// CursorRight moves the cursor right n columns.
func CursorRight(n int) string { return fmt.Sprintf("\033[%dC", n) }

const lineEnd = "\r\n"

// labelSeparator follows every label in the header.
const labelSeparator = ": "

// field is one displayed value. All labels have the same width so values
// start in one column.
type field struct {
	label  string
	format func(r convert.Reading) string
}

func counts(v uint16) string   { return fmt.Sprintf("%d", v) }
func decimal(v float64) string { return fmt.Sprintf("%f", v) }

var fields = []field{
	{"Potentiometer Counts", func(r convert.Reading) string { return counts(r.Potentiometer) }},
	{"Potentiometer  Value", func(r convert.Reading) string { return decimal(r.PotentiometerVoltage) }},
	{"  Temperature Counts", func(r convert.Reading) string { return counts(r.Temperature) }},
	{"   Temperature Value", func(r convert.Reading) string { return decimal(r.TemperatureVoltage) }},
	{"       Temperature C", func(r convert.Reading) string { return decimal(r.TemperatureC) }},
	{"       Temperature F", func(r convert.Reading) string { return decimal(r.TemperatureF) }},
	{"Internal VRef Counts", func(r convert.Reading) string { return counts(r.InternalVRef) }},
	{"Internal VRef  Value", func(r convert.Reading) string { return decimal(r.InternalVRefVoltage) }},
}

var _ output.Output = (*Terminal)(nil)

// Terminal writes readings to w.
type Terminal struct {
	w     io.Writer
	title string
	vt100 bool
}

// New creates a terminal output. With vt100 set every Publish overwrites the
// previous values instead of scrolling.
func New(w io.Writer, title string, vt100 bool) *Terminal {
	return &Terminal{w: w, title: title, vt100: vt100}
}

// ValueColumn returns the column where values start, derived from the label width.
func ValueColumn() int {
	return len(fields[0].label) + len(labelSeparator)
}

// Start clears the screen (VT100 only) and prints the title and header lines.
func (t *Terminal) Start() error {
	if t.vt100 {
		if err := t.write(ClearScreen, CursorHome, ClearScrollback); err != nil {
			return err
		}
	}
	if err := t.write(t.title, lineEnd); err != nil {
		return err
	}
	for _, f := range fields {
		if err := t.write(f.label, labelSeparator, "0", lineEnd); err != nil {
			return err
		}
	}
	return nil
}

// Publish prints the values of r, one per header line.
func (t *Terminal) Publish(r convert.Reading) error {
	column := ValueColumn()
	for i, f := range fields {
		if t.vt100 {
			if i == 0 {
				if err := t.write(CursorUp(len(fields))); err != nil {
					return err
				}
			}
			if err := t.write(CursorRight(column), ClearToEOL); err != nil {
				return err
			}
		}
		if err := t.write(f.format(r), lineEnd); err != nil {
			return err
		}
	}
	return nil
}

// Close does nothing; the writer belongs to the caller.
func (t *Terminal) Close() error { return nil }

func (t *Terminal) write(parts ...string) error {
	if _, err := io.WriteString(t.w, strings.Join(parts, "")); err != nil {
		return fmt.Errorf("terminal write: %w", err)
	}
	return nil
}

// Package parser converts the sensor board's text wire format to structured types and vice-versa.
//
// Sensor wire format (board -> bridge), one reading per line:
//
//	Temperature:<num>,Humidity:<num>,Concentration of gases:<num>,Rain:<num>
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"SensorBridge/internal/model"
)

// ErrMalformed is returned for lines that do not have the sensor wire shape.
var ErrMalformed = errors.New("malformed sensor line")

// readingPattern matches one full sensor line. Labels are case-sensitive and
// whitespace is allowed after each colon; the capture groups are the only
// place values are taken from.
var readingPattern = regexp.MustCompile(
	`^Temperature:\s*([-+]?\d+(?:\.\d+)?),` +
		`Humidity:\s*([-+]?\d+(?:\.\d+)?),` +
		`Concentration of gases:\s*([-+]?\d+(?:\.\d+)?),` +
		`Rain:\s*([-+]?\d+(?:\.\d+)?)$`)

// Clean decodes a raw serial line: invalid UTF-8 sequences are dropped and
// surrounding whitespace (including the CR of CRLF endings) is trimmed.
func Clean(raw string) string {
	return strings.TrimSpace(strings.ToValidUTF8(raw, ""))
}

// ParseReading extracts the four raw values from a cleaned sensor line.
// Lines that do not match return ErrMalformed.
func ParseReading(line string) (model.Reading, error) {
	m := readingPattern.FindStringSubmatch(line)
	if m == nil {
		return model.Reading{}, ErrMalformed
	}
	if len(m) != 5 {
		return model.Reading{}, fmt.Errorf("expected 4 fields, got %d", len(m)-1)
	}
	return model.Reading{
		Temperature: m[1],
		Humidity:    m[2],
		Gases:       m[3],
		Rain:        m[4],
	}, nil
}

// FormatReading renders a Reading in the sensor wire format (without newline).
func FormatReading(r model.Reading) string {
	return fmt.Sprintf("Temperature:%s,Humidity:%s,Concentration of gases:%s,Rain:%s",
		r.Temperature, r.Humidity, r.Gases, r.Rain)
}

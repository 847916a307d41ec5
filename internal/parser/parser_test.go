package parser

import (
	"errors"
	"testing"

	"SensorBridge/internal/model"
)

func TestParseReadingWellFormed(t *testing.T) {
	cases := []struct {
		line string
		want model.Reading
	}{
		{
			line: "Temperature:21.5,Humidity:40,Concentration of gases:150,Rain:0",
			want: model.Reading{Temperature: "21.5", Humidity: "40", Gases: "150", Rain: "0"},
		},
		{
			line: "Temperature:-4.75,Humidity:88.10,Concentration of gases:1023,Rain:512",
			want: model.Reading{Temperature: "-4.75", Humidity: "88.10", Gases: "1023", Rain: "512"},
		},
		{
			line: "Temperature: 19,Humidity:  55.5,Concentration of gases: 3,Rain: 1.0",
			want: model.Reading{Temperature: "19", Humidity: "55.5", Gases: "3", Rain: "1.0"},
		},
	}
	for _, tc := range cases {
		got, err := ParseReading(tc.line)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.line, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %+v, got %+v", tc.line, tc.want, got)
		}
	}
}

func TestParseReadingMalformed(t *testing.T) {
	lines := []string{
		"",
		"garbage data",
		"temperature:21.5,Humidity:40,Concentration of gases:150,Rain:0",
		"Temperature:21.5,Humidity:40,Concentration of gases:150",
		"Temperature:abc,Humidity:40,Concentration of gases:150,Rain:0",
		"Temperature:21.5,Humidity:40,Gas:150,Rain:0",
		"Temperature:21.5,Humidity:40,Concentration of gases:150,Rain:0,Extra:1",
		"Temperature:21.,Humidity:40,Concentration of gases:150,Rain:0",
		"Temperature:21.5;Humidity:40;Concentration of gases:150;Rain:0",
	}
	for _, line := range lines {
		if _, err := ParseReading(line); !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed for %q, got %v", line, err)
		}
	}
}

func TestCleanDropsInvalidBytesAndWhitespace(t *testing.T) {
	raw := "\xff\xfeTemperature:21.5,Humidity:40,Concentration of gases:150,Rain:0\r\n"
	got := Clean(raw)
	want := "Temperature:21.5,Humidity:40,Concentration of gases:150,Rain:0"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if _, err := ParseReading(got); err != nil {
		t.Fatalf("cleaned line should parse: %v", err)
	}
}

func TestFormatReadingRoundTrip(t *testing.T) {
	r := model.Reading{Temperature: "-0.5", Humidity: "61", Gases: "230", Rain: "12"}
	got, err := ParseReading(FormatReading(r))
	if err != nil {
		t.Fatalf("parse formatted: %v", err)
	}
	if got != r {
		t.Fatalf("expected %+v, got %+v", r, got)
	}
}

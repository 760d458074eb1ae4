package rates

import (
	"strconv"
	"testing"

	"github.com/tmcc-dev/designform/pkg/design"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"101", "101"},
		{"999", "999"},
		{"999.9", "999"},
		{"0.5", "0"},
		{"1000", "1k"},
		{"93360", "93.36k"},
		{"100000", "100k"},
		{"999999", "999.99k"},
		{"1500.5", "1.5k"},
		{"1000000", "1M"},
		{"2810000", "2.81M"},
		{"12345678", "12.34M"},
		{"-93360", "-93.36k"},
		{"-5.5", "-6"},
		{"1e3", "1k"},
		{"  250/h", "250"},
		{"abc", "abc"},
		{"", ""},
		{".", "."},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := FormatValue(tt.raw); got != tt.want {
				t.Fatalf("FormatValue(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatValue_ShortIntegersUnchanged(t *testing.T) {
	for n := 1; n < 1000; n++ {
		raw := strconv.Itoa(n)
		if got := FormatValue(raw); got != raw {
			t.Fatalf("FormatValue(%q) = %q", raw, got)
		}
	}
}

func TestParseLeadingFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"12abc", 12, true},
		{"-.5", -0.5, true},
		{"3.", 3, true},
		{"2e", 2, true},
		{"1.5e2x", 150, true},
		{"+", 0, false},
		{"e5", 0, false},
		{"1e999", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLeadingFloat(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseLeadingFloat(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		drop design.Drop
		want string
	}{
		{
			name: "blank drop",
			drop: design.NewDrop(),
			want: "Drop: x/h",
		},
		{
			name: "full drop",
			drop: design.Drop{
				Name:           "Iron Ingot",
				RateValue:      "93360",
				RateUnit:       design.RateUnitHour,
				Condition:      "with looting III",
				ExternalFactor: "chunk",
				Note:           "AFK-able",
			},
			want: "Iron Ingot (with looting III): 93.36k/chunk/h (AFK-able)",
		},
		{
			name: "custom unit",
			drop: design.Drop{Name: "Bone", RateValue: "2810000", RateUnit: design.RateUnitCustom, CustomUnit: "day"},
			want: "Bone: 2.81M/day",
		},
		{
			name: "custom without unit",
			drop: design.Drop{Name: "Bone", RateValue: "12", RateUnit: design.RateUnitCustom},
			want: "Bone: 12/interval",
		},
		{
			name: "unparseable value passes through",
			drop: design.Drop{Name: "Bone", RateValue: "lots", RateUnit: design.RateUnitHour},
			want: "Bone: lots/h",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.drop); got != tt.want {
				t.Fatalf("Preview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAlternateLine(t *testing.T) {
	line, ok := AlternateLine(design.Drop{AlternateValue: "3", AlternateInterval: "min"})
	if !ok || line != "- 3/min" {
		t.Fatalf("AlternateLine() = %q, %v", line, ok)
	}
	if _, ok := AlternateLine(design.Drop{AlternateValue: "3"}); ok {
		t.Fatalf("expected no alternate line without interval")
	}
}

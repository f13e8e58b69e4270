package format

import (
	"strings"
	"testing"
	"time"
)

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ns"},
		{850 * time.Nanosecond, "850ns"},
		{42 * time.Microsecond, "42µs"},
		{12*time.Millisecond + 400*time.Microsecond, "12ms"},
		{1500 * time.Millisecond, "1.5s"},
		{2*time.Minute + 3250*time.Millisecond, "2m3.25s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatNumberString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"7", "7"},
		{"999", "999"},
		{"2147483648", "2,147,483,648"},
		{"-1000", "-1,000"},
	}
	for _, tt := range tests {
		if got := FormatNumberString(tt.in); got != tt.want {
			t.Errorf("FormatNumberString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateDigits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"12345", 0, "12345"},
		{"123456", 3, "123456"},
		{"1234567", 3, "123...567 (7 digits)"},
		{strings.Repeat("9", 1200), 2, "99...99 (1,200 digits)"},
	}
	for _, tt := range tests {
		if got := TruncateDigits(tt.in, tt.n); got != tt.want {
			t.Errorf("TruncateDigits(%.10q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{1 << 20, "1.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

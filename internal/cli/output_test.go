package cli

import (
	"bytes"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/mpicalc/internal/orchestration"
	"github.com/agbru/mpicalc/internal/ui"
)

func init() {
	ui.InitTheme(true)
}

// pow10 returns 10^n.
func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

func TestFormatValue(t *testing.T) {
	t.Parallel()
	long := pow10(200)
	tests := []struct {
		name string
		v    *big.Int
		full bool
		want string
	}{
		{"nil", nil, false, "(none)"},
		{"short", big.NewInt(12345), false, "12345"},
		{"long full", long, true, long.String()},
		{"long truncated", long, false, "1" + strings.Repeat("0", DisplayEdges-1) + "..." + strings.Repeat("0", DisplayEdges) + " (201 digits)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatValue(tt.v, tt.full); got != tt.want {
				t.Errorf("FormatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatHex(t *testing.T) {
	t.Parallel()
	if got := FormatHex(big.NewInt(255), false); got != "0xff" {
		t.Errorf("FormatHex(255) = %q, want 0xff", got)
	}
	if got := FormatHex(nil, false); got != "(none)" {
		t.Errorf("FormatHex(nil) = %q", got)
	}
	huge := new(big.Int).Lsh(big.NewInt(1), 1000)
	got := FormatHex(huge, false)
	if !strings.HasPrefix(got, "0x1") || !strings.Contains(got, "...") {
		t.Errorf("FormatHex should truncate long values, got %q", got)
	}
	if full := FormatHex(huge, true); strings.Contains(full, "...") {
		t.Error("FormatHex(full) should not truncate")
	}
}

func TestDisplayResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   orchestration.EvaluationResult
		opts     orchestration.PresentationOptions
		contains []string
		excludes []string
	}{
		{
			name:     "plain value",
			result:   orchestration.EvaluationResult{Backend: "mpi", Value: big.NewInt(12345)},
			contains: []string{"--- Result ---", "= 12345"},
			excludes: []string{"Backend:", "Size:"},
		},
		{
			name:     "details",
			result:   orchestration.EvaluationResult{Backend: "mpi", Value: big.NewInt(1 << 40), Assigned: []string{"x", "y"}, Duration: time.Millisecond},
			opts:     orchestration.PresentationOptions{Details: true},
			contains: []string{"Backend: mpi", "41 bits, 2 limbs, 13 digits", "Assigned: x, y"},
		},
		{
			name:     "truncated",
			result:   orchestration.EvaluationResult{Backend: "big", Value: pow10(200)},
			contains: []string{"(201 digits)", "use -full"},
		},
		{
			name:     "full value",
			result:   orchestration.EvaluationResult{Backend: "big", Value: pow10(200)},
			opts:     orchestration.PresentationOptions{ShowValue: true},
			contains: []string{pow10(200).String()},
			excludes: []string{"use -full"},
		},
		{
			name:     "hex",
			result:   orchestration.EvaluationResult{Backend: "mpi", Value: big.NewInt(4096)},
			opts:     orchestration.PresentationOptions{Hex: true},
			contains: []string{"= 4096", "= 0x1000"},
		},
		{
			name:     "no value",
			result:   orchestration.EvaluationResult{Backend: "mpi"},
			contains: []string{"= (none)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			DisplayResult(tt.result, tt.opts, &buf)
			output := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(output, s) {
					t.Errorf("expected output to contain %q, got:\n%s", s, output)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(output, s) {
					t.Errorf("expected output not to contain %q, got:\n%s", s, output)
				}
			}
		})
	}
}

func TestFormatQuietResult(t *testing.T) {
	t.Parallel()
	tests := []struct {
		v    *big.Int
		hex  bool
		want string
	}{
		{nil, false, ""},
		{big.NewInt(42), false, "42"},
		{big.NewInt(42), true, "0x2a"},
	}
	for _, tt := range tests {
		if got := FormatQuietResult(tt.v, tt.hex); got != tt.want {
			t.Errorf("FormatQuietResult(%v, %v) = %q, want %q", tt.v, tt.hex, got, tt.want)
		}
	}
}

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	res := orchestration.EvaluationResult{Backend: "mpi", Value: big.NewInt(55), Duration: time.Millisecond}

	t.Run("nested directory is created", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(tmpDir, "a", "b", "result.txt")
		cfg := OutputConfig{OutputFile: path}
		cfg.Hex = true
		if err := WriteResultToFile(res, "x = 5\nx * 11", cfg); err != nil {
			t.Fatalf("WriteResultToFile: %v", err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read output file: %v", err)
		}
		for _, want := range []string{"# Backend: mpi", "# Source: x = 5; x * 11", "# Bits: 6", "\n55\n", "0x37"} {
			if !strings.Contains(string(content), want) {
				t.Errorf("file should contain %q, got:\n%s", want, content)
			}
		}
	})

	t.Run("empty path is a no-op", func(t *testing.T) {
		t.Parallel()
		if err := WriteResultToFile(res, "", OutputConfig{}); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("unwritable path fails", func(t *testing.T) {
		t.Parallel()
		blocker := filepath.Join(tmpDir, "blocker")
		if err := os.WriteFile(blocker, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		err := WriteResultToFile(res, "", OutputConfig{OutputFile: filepath.Join(blocker, "out.txt")})
		if err == nil {
			t.Error("expected an error when a parent is a regular file")
		}
	})
}

func TestDisplayResultWithConfig(t *testing.T) {
	t.Parallel()
	res := orchestration.EvaluationResult{Backend: "mpi", Value: big.NewInt(99)}

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := DisplayResultWithConfig(&buf, res, "", OutputConfig{Quiet: true}); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "99\n" {
			t.Errorf("quiet output = %q, want %q", buf.String(), "99\n")
		}
	})

	t.Run("saved", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "r.txt")
		if err := DisplayResultWithConfig(&buf, res, "99", OutputConfig{OutputFile: path}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Result saved to: "+path) {
			t.Errorf("missing save notice in %q", buf.String())
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file not written: %v", err)
		}
	})
}

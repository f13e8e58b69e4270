package calc

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

func bigString(t testing.TB, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad test literal %q", s)
	}
	return v
}

func testBackends() []Backend {
	return []Backend{NewMPIBackend(), NewBigBackend()}
}

func evalString(t *testing.T, b Backend, src string, env Env) (*Result, error) {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return b.Eval(context.Background(), prog, env, nil)
}

func TestEvalValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"x = 10; y = x * x; y - x", "90"},
		{"100 / 7", "14"},
		{"100 % 7", "2"},
		{"7 / 100", "0"},
		{"1 << 100", "1267650600228229401496703205376"},
		{"(1 << 100) >> 99", "2"},
		{"5 >> (1 << 70)", "0"},
		{"2 << 3 + 1", "32"},
		{"gcd(462, 1071)", "21"},
		{"gcd(0, 0)", "0"},
		{"gcd(0, 9)", "9"},
		{"bitlen(255)", "8"},
		{"bitlen(0)", "0"},
		{"bit(5, 2)", "1"},
		{"bit(5, 1)", "0"},
		{"bit(5, 18446744073709551616)", "0"},
		{"setbit(0, 64)", "18446744073709551616"},
		{"setbit(1, 0)", "1"},
		{"modpow2(1023, 4)", "15"},
		{"modpow2(1023, 40)", "1023"},
		{"modpow2(1023, 18446744073709551616)", "1023"},
		{"min(3, 9)", "3"},
		{"max(3, 9)", "9"},
		{"# comment\n\n5 ; 6", "6"},
		{"000", "0"},
		{"2147483647 + 1", "2147483648"},
		{"123456789012345678901234567890 * 987654321098765432109876543210", "121932631137021795226185032733622923332237463801111263526900"},
	}

	for _, b := range testBackends() {
		for _, tt := range tests {
			t.Run(b.Name()+"/"+tt.src, func(t *testing.T) {
				t.Parallel()
				res, err := evalString(t, b, tt.src, nil)
				if err != nil {
					t.Fatalf("Eval(%q) error: %v", tt.src, err)
				}
				if got := res.Value.String(); got != tt.want {
					t.Errorf("Eval(%q) = %s, want %s", tt.src, got, tt.want)
				}
			})
		}
	}
}

func TestEvalEmptyProgram(t *testing.T) {
	t.Parallel()
	for _, b := range testBackends() {
		res, err := evalString(t, b, "# only a comment", nil)
		if err != nil {
			t.Fatalf("%s: %v", b.Name(), err)
		}
		if res.Value != nil {
			t.Errorf("%s: Value = %v, want nil", b.Name(), res.Value)
		}
	}
}

func TestEvalAssignments(t *testing.T) {
	t.Parallel()
	for _, b := range testBackends() {
		t.Run(b.Name(), func(t *testing.T) {
			t.Parallel()
			env := Env{"a": big.NewInt(5)}
			res, err := evalString(t, b, "x = a * 2; y = x + 1; x = x + y", env)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]string{"x", "y"}, res.Assigned); diff != "" {
				t.Errorf("Assigned mismatch (-want +got):\n%s", diff)
			}
			got := map[string]string{}
			for k, v := range res.Vars {
				got[k] = v.String()
			}
			want := map[string]string{"a": "5", "x": "21", "y": "11"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Vars mismatch (-want +got):\n%s", diff)
			}
			if len(env) != 1 {
				t.Errorf("input env was modified: %v", env)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		kind error
		pos  Position
	}{
		{"1 - 2", apperrors.ErrUnderflow, Position{1, 3}},
		{"x = 3\nx - (x + 1)", apperrors.ErrUnderflow, Position{2, 3}},
		{"5 / 0", apperrors.ErrDivisionByZero, Position{1, 3}},
		{"5 % (3 - 3)", apperrors.ErrDivisionByZero, Position{1, 3}},
		{"y + 1", apperrors.ErrUndefined, Position{1, 1}},
		{"1 << 16777217", apperrors.ErrLimit, Position{1, 3}},
		{"1 << (1 << 70)", apperrors.ErrLimit, Position{1, 3}},
		{"setbit(0, 16777217)", apperrors.ErrLimit, Position{1, 1}},
	}

	for _, b := range testBackends() {
		for _, tt := range tests {
			t.Run(b.Name()+"/"+tt.src, func(t *testing.T) {
				t.Parallel()
				res, err := evalString(t, b, tt.src, nil)
				if err == nil {
					t.Fatalf("Eval(%q) = %v, want error", tt.src, res.Value)
				}
				if res != nil {
					t.Errorf("result should be nil on error")
				}
				if !errors.Is(err, tt.kind) {
					t.Errorf("error %v should match %v", err, tt.kind)
				}
				var ee *EvalError
				if !errors.As(err, &ee) {
					t.Fatalf("error %T is not an *EvalError", err)
				}
				if ee.Pos != tt.pos {
					t.Errorf("position = %s, want %s", ee.Pos, tt.pos)
				}
			})
		}
	}
}

func TestEvalNegativeEnv(t *testing.T) {
	t.Parallel()
	for _, b := range testBackends() {
		_, err := evalString(t, b, "n", Env{"n": big.NewInt(-1)})
		if !errors.Is(err, apperrors.ErrUnderflow) {
			t.Errorf("%s: error = %v, want underflow", b.Name(), err)
		}
	}
}

func TestEvalCanceled(t *testing.T) {
	t.Parallel()
	prog, err := Parse("1 + 1")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, b := range testBackends() {
		_, err := b.Eval(ctx, prog, nil, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: error = %v, want context.Canceled", b.Name(), err)
		}
	}
}

func TestEvalDeadlineInsideStatement(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"remainder", "(1 << 2000000) % ((1 << 1000000) + 1)"},
		{"quotient", "x = 1 << 2000000; x / ((1 << 1000000) + 1)"},
		{"gcd", "gcd(1 << 2000000, (1 << 1000000) + 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			prog, err := Parse(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			start := time.Now()
			res, err := NewMPIBackend().Eval(ctx, prog, nil, nil)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("err = %v, want context.DeadlineExceeded", err)
			}
			if res != nil {
				t.Errorf("expected no result after the deadline, got %v", res.Value)
			}
			if elapsed := time.Since(start); elapsed > 5*time.Second {
				t.Errorf("evaluation stopped %v after start, long past the deadline", elapsed)
			}
		})
	}
}

func TestEvalDeadlineAfterLastStatement(t *testing.T) {
	t.Parallel()
	prog, err := Parse("x = 3; x * x")
	if err != nil {
		t.Fatal(err)
	}
	// The context ends once the last statement has been evaluated.
	ctx, cancel := context.WithCancel(context.Background())
	progress := func(done float64) {
		if done == 1 {
			cancel()
		}
	}
	for _, b := range testBackends() {
		res, err := b.Eval(ctx, prog, nil, progress)
		if !errors.Is(err, context.Canceled) || res != nil {
			t.Errorf("%s: Eval = (%v, %v), want context.Canceled", b.Name(), res, err)
		}
	}
}

func TestEvalProgress(t *testing.T) {
	t.Parallel()
	prog, err := Parse("1; 2; 3; 4")
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range testBackends() {
		var got []float64
		if _, err := b.Eval(context.Background(), prog, nil, func(done float64) { got = append(got, done) }); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]float64{0.25, 0.5, 0.75, 1}, got); diff != "" {
			t.Errorf("%s: progress mismatch (-want +got):\n%s", b.Name(), diff)
		}
	}
}

func TestBackendsAgreeOnLargeScript(t *testing.T) {
	t.Parallel()
	src := `
a = 1 << 4000
b = a / 3 + 12345678901234567890
c = b * b - a
q = c / (b >> 1000)
r = c % (b >> 1000)
gcd(q, r) + bitlen(c) + modpow2(c, 3001)
`
	var values []string
	for _, b := range testBackends() {
		res, err := evalString(t, b, src, nil)
		if err != nil {
			t.Fatalf("%s: %v", b.Name(), err)
		}
		values = append(values, res.Value.String())
	}
	if values[0] != values[1] {
		t.Errorf("backends disagree:\nmpi %s\nbig %s", values[0], values[1])
	}
}

func TestEnvClone(t *testing.T) {
	t.Parallel()
	env := Env{"a": big.NewInt(1)}
	c := env.Clone()
	c["b"] = big.NewInt(2)
	if _, ok := env["b"]; ok {
		t.Error("Clone should not share the map")
	}
}

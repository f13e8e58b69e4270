package calc

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

func words(ws []uint64) *big.Int {
	z := new(big.Int)
	for _, w := range ws {
		z.Lsh(z, 64)
		z.Add(z, new(big.Int).SetUint64(w))
	}
	return z
}

// TestBackendsAgree_PropertyBased evaluates the same script on the mpi and
// big backends with random operands and compares the outcome.
func TestBackendsAgree_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	properties := gopter.NewProperties(parameters)

	prog, err := Parse(`
s = x + y
p = x * y
q = p / (y + 1)
r = p % (y + 1)
g = gcd(x, y)
m = modpow2(p, 77) + bitlen(s) + bit(p, 63)
(q << 5) + r + g + m + max(x, y) - min(x, y)
`)
	if err != nil {
		t.Fatal(err)
	}
	mpiB, bigB := NewMPIBackend(), NewBigBackend()
	operand := gen.IntRange(0, 12).FlatMap(func(v any) gopter.Gen {
		return gen.SliceOfN(v.(int), gen.UInt64())
	}, reflect.TypeOf([]uint64(nil)))

	properties.Property("mpi and big produce identical results", prop.ForAll(
		func(a, b []uint64) bool {
			env := Env{"x": words(a), "y": words(b)}
			r1, err1 := mpiB.Eval(context.Background(), prog, env, nil)
			r2, err2 := bigB.Eval(context.Background(), prog, env, nil)
			if err1 != nil || err2 != nil {
				return false
			}
			for name, v := range r2.Vars {
				if r1.Vars[name].Cmp(v) != 0 {
					return false
				}
			}
			return r1.Value.Cmp(r2.Value) == 0
		},
		operand, operand,
	))

	properties.Property("underflow is reported by both backends", prop.ForAll(
		func(a uint64) bool {
			env := Env{"x": new(big.Int).SetUint64(a)}
			p, _ := Parse("x - (x + 1)")
			_, err1 := mpiB.Eval(context.Background(), p, env, nil)
			_, err2 := bigB.Eval(context.Background(), p, env, nil)
			return errors.Is(err1, apperrors.ErrUnderflow) && errors.Is(err2, apperrors.ErrUnderflow)
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

// FuzzEvaluate feeds arbitrary scripts to the parser and, when they parse,
// checks that the two backends agree on the value or on the error kind.
func FuzzEvaluate(f *testing.F) {
	f.Add("1 + 2 * 3")
	f.Add("x = 99999999999999999999; x * x / 7")
	f.Add("gcd(12, 18) - 7")
	f.Add("modpow2(255, 3) >> 1")
	f.Add("5 / 0")
	f.Add("bit(5, 2); min(1, 2)")
	f.Add("a = (")

	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 64 || strings.Contains(src, "<<") || strings.Contains(src, "setbit") {
			return
		}
		prog, err := Parse(src)
		if err != nil {
			if !errors.Is(err, apperrors.ErrParse) {
				t.Fatalf("Parse(%q) error %v does not match ErrParse", src, err)
			}
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		r1, err1 := NewMPIBackend().Eval(ctx, prog, nil, nil)
		r2, err2 := NewBigBackend().Eval(ctx, prog, nil, nil)
		if apperrors.IsContextError(err1) || apperrors.IsContextError(err2) {
			return
		}
		if (err1 == nil) != (err2 == nil) {
			t.Fatalf("%q: mpi err = %v, big err = %v", src, err1, err2)
		}
		if err1 != nil {
			if k1, k2 := apperrors.KindOf(err1), apperrors.KindOf(err2); k1 != k2 {
				t.Fatalf("%q: error kinds differ: %s vs %s", src, k1, k2)
			}
			return
		}
		if (r1.Value == nil) != (r2.Value == nil) || (r1.Value != nil && r1.Value.Cmp(r2.Value) != 0) {
			t.Fatalf("%q: mpi = %v, big = %v", src, r1.Value, r2.Value)
		}
	})
}

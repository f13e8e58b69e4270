package mpi

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

func TestDivMod(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		x, y string
		q, r string
	}{
		{"small", "549755813889", "1234", "445507142", "661"},
		{"exact", "4611686018427387904", "2147483648", "2147483648", "0"},
		{"dividend smaller", "5", "9", "0", "5"},
		{"zero dividend", "0", "9", "0", "0"},
		{"by one", "3433683820292512484657849089280", "1", "3433683820292512484657849089280", "0"},
		{"multi limb", "76177348045866392339289727720615561750424801402395196723959174586681921139518743586400",
			"42391158275216203514294433201", "1797010299914431210413179829509605039731475627537851106400", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q, r := new(Int).DivMod(dec(t, tt.x), dec(t, tt.y), new(Int))
			checkInvariant(t, q)
			checkInvariant(t, r)
			if decString(q) != tt.q || decString(r) != tt.r {
				t.Errorf("DivMod(%s, %s) = (%s, %s), want (%s, %s)", tt.x, tt.y, decString(q), decString(r), tt.q, tt.r)
			}
		})
	}
}

func TestDivAndMod(t *testing.T) {
	t.Parallel()
	x, y := dec(t, "549755813889"), dec(t, "1234")
	if got := decString(new(Int).Div(x, y)); got != "445507142" {
		t.Errorf("Div = %s", got)
	}
	if got := decString(new(Int).Mod(x, y)); got != "661" {
		t.Errorf("Mod = %s", got)
	}
}

func TestDivModAliasing(t *testing.T) {
	t.Parallel()
	x, y := dec(t, "549755813889"), dec(t, "1234")
	x.DivMod(x, y, y)
	if decString(x) != "445507142" || decString(y) != "661" {
		t.Errorf("aliased DivMod = (%s, %s)", decString(x), decString(y))
	}
}

func TestDivisionByZero(t *testing.T) {
	t.Parallel()
	ops := map[string]func(x, y *Int){
		"DivMod": func(x, y *Int) { new(Int).DivMod(x, y, new(Int)) },
		"Div":    func(x, y *Int) { new(Int).Div(x, y) },
		"Mod":    func(x, y *Int) { new(Int).Mod(x, y) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var err error
			func() {
				defer apperrors.RecoverArithmetic(&err)
				op(new(Int).SetUint32(5), new(Int).Enlarge(3))
			}()
			if !errors.Is(err, apperrors.ErrDivisionByZero) {
				t.Fatalf("expected division by zero, got %v", err)
			}
		})
	}
}

func TestGCD(t *testing.T) {
	t.Parallel()
	tests := []struct{ a, b, want string }{
		{"2310", "46189", "11"},
		{"46189", "2310", "11"},
		{"12", "0", "12"},
		{"0", "12", "12"},
		{"0", "0", "0"},
		{"17", "17", "17"},
		{"3433683820292512484657849089280", "1144561273430837494885949696424", "8"},
	}
	for _, tt := range tests {
		got := new(Int).GCD(dec(t, tt.a), dec(t, tt.b))
		if decString(got) != tt.want {
			t.Errorf("GCD(%s, %s) = %s, want %s", tt.a, tt.b, decString(got), tt.want)
		}
	}
}

func TestGCDAliasing(t *testing.T) {
	t.Parallel()
	a, b := dec(t, "2310"), dec(t, "46189")
	a.GCD(a, b)
	if decString(a) != "11" || decString(b) != "46189" {
		t.Errorf("aliased GCD: a=%s b=%s", decString(a), decString(b))
	}
}

func TestContextVariants(t *testing.T) {
	t.Parallel()
	// Both operands span several Karatsuba levels and the dividend has
	// thousands of quotient bits.
	x := new(Int).Sub(new(Int).Lsh(NewUint64(1), 4000), NewUint64(1))
	y := new(Int).Add(new(Int).Lsh(NewUint64(1), 2000), NewUint64(3))
	// Euclid on x and a power of two finishes in three steps.
	p := new(Int).Lsh(NewUint64(1), 2000)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		run  func(ctx context.Context, z *Int) error
		want func() *Int
	}{
		{
			name: "MulContext",
			run:  func(ctx context.Context, z *Int) error { _, err := z.MulContext(ctx, x, y); return err },
			want: func() *Int { return new(Int).Mul(x, y) },
		},
		{
			name: "DivModContext",
			run: func(ctx context.Context, z *Int) error {
				_, _, err := z.DivModContext(ctx, x, y, new(Int))
				return err
			},
			want: func() *Int { return new(Int).Div(x, y) },
		},
		{
			name: "GCDContext",
			run:  func(ctx context.Context, z *Int) error { _, err := z.GCDContext(ctx, x, p); return err },
			want: func() *Int { return new(Int).GCD(x, p) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			z := NewUint64(7)
			err := tt.run(canceled, z)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("canceled context: err = %v, want context.Canceled", err)
			}
			if decString(z) != "7" {
				t.Errorf("receiver changed to %s on cancellation", decString(z))
			}

			z = new(Int)
			if err := tt.run(context.Background(), z); err != nil {
				t.Fatalf("live context: %v", err)
			}
			if z.Cmp(tt.want()) != 0 {
				t.Errorf("result %s differs from the plain method", decString(z))
			}
		})
	}
}

func TestDivModContextDeadline(t *testing.T) {
	t.Parallel()
	x := new(Int).Lsh(NewUint64(1), 400000)
	y := new(Int).Add(new(Int).Lsh(NewUint64(1), 200000), NewUint64(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, _, err := new(Int).DivModContext(ctx, x, y, new(Int))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("DivModContext returned %v after the deadline", elapsed)
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/markkurossi/tabulate"

	"github.com/agbru/mpicalc/internal/format"
	"github.com/agbru/mpicalc/internal/metrics"
	"github.com/agbru/mpicalc/internal/mpi"
	"github.com/agbru/mpicalc/internal/oracle"
	"github.com/agbru/mpicalc/internal/sysmon"
)

// BenchConfig controls RunBenchmark.
type BenchConfig struct {
	// Limbs are the operand sizes, in 31-bit limbs.
	Limbs []int
	// MinDuration is how long each measurement repeats its operation.
	MinDuration time.Duration
	// Seed makes the operands reproducible.
	Seed uint64
}

// BenchResult is one table row: the mean time of one operation at one size.
type BenchResult struct {
	Op    string
	Limbs int
	MPI   time.Duration
	Big   time.Duration
	// Skipped is set when the size is above the operation's limit.
	Skipped bool
	// Agree reports whether both implementations produced the same value.
	Agree bool
}

// Ratio is the mpi time over the math/big time.
func (r BenchResult) Ratio() float64 {
	if r.Big == 0 {
		return 0
	}
	return float64(r.MPI) / float64(r.Big)
}

type benchOp struct {
	name string
	// maxLimbs bounds the sizes measured; division is bit-serial and GCD
	// performs one division per step.
	maxLimbs int
	// wide doubles the length of the first operand.
	wide  bool
	mpiFn func(x, y *mpi.Int) *mpi.Int
	bigFn func(x, y *big.Int) *big.Int
}

var benchOps = []benchOp{
	{
		name:  "add",
		mpiFn: func(x, y *mpi.Int) *mpi.Int { return new(mpi.Int).Add(x, y) },
		bigFn: func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) },
	},
	{
		name:  "mul",
		mpiFn: func(x, y *mpi.Int) *mpi.Int { return new(mpi.Int).Mul(x, y) },
		bigFn: func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) },
	},
	{
		name:     "divmod",
		maxLimbs: 512,
		wide:     true,
		mpiFn: func(x, y *mpi.Int) *mpi.Int {
			q, _ := new(mpi.Int).DivMod(x, y, new(mpi.Int))
			return q
		},
		bigFn: func(x, y *big.Int) *big.Int {
			q, _ := new(big.Int).QuoRem(x, y, new(big.Int))
			return q
		},
	},
	{
		name:     "gcd",
		maxLimbs: 32,
		mpiFn:    func(x, y *mpi.Int) *mpi.Int { return new(mpi.Int).GCD(x, y) },
		bigFn:    func(x, y *big.Int) *big.Int { return new(big.Int).GCD(nil, nil, x, y) },
	},
}

// RunBenchmark times add, mul, divmod and gcd on random operands with the
// mpi package and with math/big, and checks that both agree. It stops early
// and returns ctx.Err() when ctx is canceled.
func RunBenchmark(ctx context.Context, cfg BenchConfig, progress func(op string, limbs int)) ([]BenchResult, error) {
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = 50 * time.Millisecond
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	var results []BenchResult
	for _, op := range benchOps {
		for _, n := range cfg.Limbs {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			if op.maxLimbs > 0 && n > op.maxLimbs {
				results = append(results, BenchResult{Op: op.name, Limbs: n, Skipped: true})
				continue
			}
			if progress != nil {
				progress(op.name, n)
			}
			xLimbs := n
			if op.wide {
				xLimbs = 2 * n
			}
			bx, by := randomOperand(rng, xLimbs), randomOperand(rng, n)
			mx, my := oracle.MustFromBig(bx), oracle.MustFromBig(by)

			var mres *mpi.Int
			var bres *big.Int
			r := BenchResult{Op: op.name, Limbs: n}
			r.MPI = timeOp(ctx, cfg.MinDuration, func() { mres = op.mpiFn(mx, my) })
			r.Big = timeOp(ctx, cfg.MinDuration, func() { bres = op.bigFn(bx, by) })
			r.Agree = oracle.ToBig(mres).Cmp(bres) == 0
			results = append(results, r)
		}
	}
	return results, nil
}

// randomOperand returns a value of exactly n limbs with a nonzero top limb.
func randomOperand(rng *rand.Rand, n int) *big.Int {
	v := new(big.Int)
	for i := 0; i < n; i++ {
		limb := rng.Uint64() & (1<<mpi.LimbBits - 1)
		if i == 0 && limb == 0 {
			limb = 1
		}
		v.Lsh(v, mpi.LimbBits)
		v.Or(v, new(big.Int).SetUint64(limb))
	}
	return v
}

// timeOp runs fn at least once and until minDur has elapsed, and returns the
// mean duration of one call.
func timeOp(ctx context.Context, minDur time.Duration, fn func()) time.Duration {
	start := time.Now()
	iters := 0
	for {
		fn()
		iters++
		if elapsed := time.Since(start); elapsed >= minDur || ctx.Err() != nil {
			return elapsed / time.Duration(iters)
		}
	}
}

// DisplayBenchmark prints results as a table followed by host and memory
// information.
func DisplayBenchmark(results []BenchResult, host sysmon.Host, mem metrics.MemoryDelta, out io.Writer) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("Limbs").SetAlign(tabulate.MR)
	tab.Header("Bits").SetAlign(tabulate.MR)
	tab.Header("mpi").SetAlign(tabulate.MR)
	tab.Header("math/big").SetAlign(tabulate.MR)
	tab.Header("Ratio").SetAlign(tabulate.MR)
	tab.Header("Check").SetAlign(tabulate.MC)

	for _, r := range results {
		row := tab.Row()
		row.Column(r.Op)
		row.Column(format.FormatNumberString(fmt.Sprint(r.Limbs)))
		row.Column(format.FormatNumberString(fmt.Sprint(r.Limbs * mpi.LimbBits)))
		if r.Skipped {
			row.Column("-").SetFormat(tabulate.FmtItalic)
			row.Column("-").SetFormat(tabulate.FmtItalic)
			row.Column("-").SetFormat(tabulate.FmtItalic)
			row.Column("skipped").SetFormat(tabulate.FmtItalic)
			continue
		}
		row.Column(format.FormatExecutionDuration(r.MPI))
		row.Column(format.FormatExecutionDuration(r.Big))
		row.Column(fmt.Sprintf("%.1fx", r.Ratio()))
		if r.Agree {
			row.Column("ok")
		} else {
			row.Column("MISMATCH").SetFormat(tabulate.FmtBold)
		}
	}
	tab.Print(out)

	model := host.Model
	if model == "" {
		model = "unknown CPU"
	}
	fmt.Fprintf(out, "\nHost: %s, %s, %d logical processors", model, host.Arch, host.NumCPU)
	if len(host.Features) > 0 {
		fmt.Fprintf(out, ", %s", strings.Join(host.Features, " "))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Allocated %s in %s allocations, %d GC cycles, peak heap %s\n",
		format.FormatBytes(mem.Allocated), format.FormatNumberString(fmt.Sprint(mem.Allocs)),
		mem.GCCycles, format.FormatBytes(mem.PeakHeap))
}

// BenchMismatches counts rows where the implementations disagreed.
func BenchMismatches(results []BenchResult) int {
	n := 0
	for _, r := range results {
		if !r.Skipped && !r.Agree {
			n++
		}
	}
	return n
}

// RunBenchmarkWithSpinner runs the benchmark behind a spinner on out and
// prints the table.
func RunBenchmarkWithSpinner(ctx context.Context, cfg BenchConfig, out io.Writer) ([]BenchResult, error) {
	s := newSpinner(spinner.WithWriter(out))
	s.Start()

	var results []BenchResult
	var err error
	mem := metrics.NewMemoryCollector().Measure(func() {
		results, err = RunBenchmark(ctx, cfg, func(op string, limbs int) {
			s.UpdateSuffix(fmt.Sprintf(" Benchmarking %s at %d limbs", op, limbs))
		})
	})
	s.Stop()
	if err != nil {
		return results, err
	}
	DisplayBenchmark(results, sysmon.DescribeHost(), mem, out)
	return results, nil
}

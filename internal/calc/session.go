package calc

import (
	"context"
	"math/big"
	"sort"
	"sync"
	"time"
)

// Session keeps variables across evaluations, as in the REPL or the TUI.
// It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	vars      Env
	maxDigits int
}

// Binding is a named value.
type Binding struct {
	Name  string
	Value *big.Int
}

// NewSession returns an empty session. maxDigits limits literal length
// (<= 0 for no limit).
func NewSession(maxDigits int) *Session {
	return &Session{vars: make(Env), maxDigits: maxDigits}
}

// Eval parses src and evaluates it with backend. Assignments are committed
// to the session only if the whole script succeeds.
func (s *Session) Eval(ctx context.Context, backend Backend, src string) (*Result, time.Duration, error) {
	return s.EvalProgress(ctx, backend, src, nil)
}

// EvalProgress is Eval with a progress callback.
func (s *Session) EvalProgress(ctx context.Context, backend Backend, src string, progress ProgressCallback) (*Result, time.Duration, error) {
	prog, err := ParseAndValidate(src, s.maxDigits)
	if err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	env := s.vars.Clone()
	s.mu.Unlock()

	res, elapsed, err := Evaluate(ctx, backend, prog, env, progress)
	if err != nil {
		return nil, elapsed, err
	}
	s.mu.Lock()
	for _, name := range res.Assigned {
		s.vars[name] = res.Vars[name]
	}
	s.mu.Unlock()
	return res, elapsed, nil
}

// Env returns a snapshot of the session variables.
func (s *Session) Env() Env {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vars.Clone()
}

// Vars returns the bindings sorted by name.
func (s *Session) Vars() []Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Binding, 0, len(s.vars))
	for name, v := range s.vars {
		out = append(out, Binding{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset forgets every variable.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars = make(Env)
}

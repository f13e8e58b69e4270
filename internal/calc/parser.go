package calc

import (
	"fmt"
	"slices"

	apperrors "github.com/agbru/mpicalc/internal/errors"
)

// SyntaxError reports malformed source text.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// Unwrap lets errors.Is match apperrors.ErrParse.
func (e *SyntaxError) Unwrap() error { return apperrors.ErrParse }

// Parse parses src into a Program. Empty statements are skipped, so an
// empty or comment-only script yields a Program with no statements.
func Parse(src string) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	prog := &Program{Source: src}
	for {
		for p.peek().kind == tokSep {
			p.next()
		}
		if p.peek().kind == tokEOF {
			return prog, nil
		}
		stmt, err := p.stmt()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
		if t := p.peek(); t.kind != tokSep && t.kind != tokEOF {
			return nil, p.unexpected(t, "end of statement")
		}
	}
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) peekAt(n int) token {
	if p.i+n < len(p.toks) {
		return p.toks[p.i+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) unexpected(t token, want string) error {
	return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %s, expected %s", t, want)}
}

func (p *parser) stmt() (*Stmt, error) {
	start := p.peek()
	if start.kind == tokIdent && p.peekAt(1).kind == tokAssign {
		if _, ok := builtins[start.text]; ok {
			return nil, &SyntaxError{Pos: start.pos, Msg: fmt.Sprintf("cannot assign to built-in %q", start.text)}
		}
		p.next()
		p.next()
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &Stmt{Pos: start.pos, Name: start.text, X: x}, nil
	}
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &Stmt{Pos: start.pos, X: x}, nil
}

// Precedence levels, loosest first.
var levels = [][]string{
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *parser) expr() (Expr, error) { return p.binary(0) }

func (p *parser) binary(level int) (Expr, error) {
	if level == len(levels) {
		return p.primary()
	}
	x, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || !slices.Contains(levels[level], t.text) {
			return x, nil
		}
		p.next()
		y, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		x = &BinaryExpr{Pos: t.pos, Op: t.text, X: x, Y: y}
	}
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &NumberLit{Pos: t.pos, Text: t.text}, nil
	case tokIdent:
		if p.peek().kind != tokLParen {
			return &Ident{Pos: t.pos, Name: t.text}, nil
		}
		return p.call(t)
	case tokLParen:
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if r := p.next(); r.kind != tokRParen {
			return nil, p.unexpected(r, `")"`)
		}
		return x, nil
	case tokOp:
		if t.text == "-" {
			return nil, &SyntaxError{Pos: t.pos, Msg: "negative numbers are not supported"}
		}
	}
	return nil, p.unexpected(t, "number, name or \"(\"")
}

func (p *parser) call(name token) (Expr, error) {
	arity, ok := builtins[name.text]
	if !ok {
		return nil, &SyntaxError{Pos: name.pos, Msg: fmt.Sprintf("unknown function %q", name.text)}
	}
	p.next() // (
	call := &CallExpr{Pos: name.pos, Func: name.text}
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if r := p.next(); r.kind != tokRParen {
		return nil, p.unexpected(r, `")"`)
	}
	if len(call.Args) != arity {
		return nil, &SyntaxError{Pos: name.pos, Msg: fmt.Sprintf("%s takes %d argument(s), got %d", name.text, arity, len(call.Args))}
	}
	return call, nil
}

// Validate checks limits that do not depend on the backend. A literal longer
// than maxDigits is rejected; maxDigits <= 0 disables the check.
func (prog *Program) Validate(maxDigits int) error {
	if maxDigits <= 0 {
		return nil
	}
	var err error
	for _, s := range prog.Stmts {
		Walk(s.X, func(e Expr) {
			if lit, ok := e.(*NumberLit); ok && err == nil && len(lit.Text) > maxDigits {
				err = fmt.Errorf("%s: literal has %d digits, limit is %d: %w", lit.Pos, len(lit.Text), maxDigits,
					apperrors.ValidationError{Field: "literal", Message: "too many digits"})
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

package calc

import "fmt"

// Position is a 1-based line and column in the source text.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Program is a parsed script.
type Program struct {
	Stmts []*Stmt
	// Source is the text the program was parsed from.
	Source string
}

// Stmt is a single statement. Name is empty for a bare expression.
type Stmt struct {
	Pos  Position
	Name string
	X    Expr
}

// Expr is an expression node.
type Expr interface {
	Position() Position
	exprNode()
}

// NumberLit is a decimal literal.
type NumberLit struct {
	Pos  Position
	Text string
}

// Ident is a reference to a variable.
type Ident struct {
	Pos  Position
	Name string
}

// BinaryExpr is X Op Y.
type BinaryExpr struct {
	Pos Position
	Op  string
	X   Expr
	Y   Expr
}

// CallExpr is a call of a built-in function.
type CallExpr struct {
	Pos  Position
	Func string
	Args []Expr
}

func (e *NumberLit) Position() Position  { return e.Pos }
func (e *Ident) Position() Position      { return e.Pos }
func (e *BinaryExpr) Position() Position { return e.Pos }
func (e *CallExpr) Position() Position   { return e.Pos }

func (*NumberLit) exprNode()  {}
func (*Ident) exprNode()      {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}

// builtins maps each built-in function to its arity.
var builtins = map[string]int{
	"gcd":     2,
	"bitlen":  1,
	"bit":     2,
	"setbit":  2,
	"modpow2": 2,
	"min":     2,
	"max":     2,
}

// Builtins returns the names of the built-in functions, for completion.
func Builtins() []string {
	return []string{"bit", "bitlen", "gcd", "max", "min", "modpow2", "setbit"}
}

// Walk calls fn for e and every expression below it, depth first.
func Walk(e Expr, fn func(Expr)) {
	fn(e)
	switch n := e.(type) {
	case *BinaryExpr:
		Walk(n.X, fn)
		Walk(n.Y, fn)
	case *CallExpr:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	}
}

package calc

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokSep
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokAssign
)

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokSep:
		if t.text == "\n" {
			return "newline"
		}
	}
	return fmt.Sprintf("%q", t.text)
}

// lex splits src into tokens. It fails on the first character that cannot
// start a token.
func lex(src string) ([]token, error) {
	var toks []token
	line, col := 1, 1
	for i := 0; i < len(src); {
		c := src[i]
		pos := Position{Line: line, Col: col}
		switch {
		case c == '\n':
			toks = append(toks, token{tokSep, "\n", pos})
			i++
			line, col = line+1, 1
			continue
		case c == ' ' || c == '\t' || c == '\r':
			i++
			col++
			continue
		case c == '#':
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				j = len(src) - i
			}
			i += j
			col += j
			continue
		case c == ';':
			toks = append(toks, token{tokSep, ";", pos})
		case isDigit(c):
			j := i
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			if j < len(src) && isIdentStart(src[j]) {
				return nil, &SyntaxError{Pos: Position{Line: line, Col: col + j - i}, Msg: fmt.Sprintf("unexpected %q in number", src[j])}
			}
			toks = append(toks, token{tokNumber, src[i:j], pos})
			col += j - i
			i = j
			continue
		case isIdentStart(c):
			j := i
			for j < len(src) && (isIdentStart(src[j]) || isDigit(src[j])) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j], pos})
			col += j - i
			i = j
			continue
		case c == '<' || c == '>':
			if i+1 < len(src) && src[i+1] == c {
				toks = append(toks, token{tokOp, src[i : i+2], pos})
				i += 2
				col += 2
				continue
			}
			return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected %q (did you mean %q?)", c, string([]byte{c, c}))}
		case strings.IndexByte("+-*/%", c) >= 0:
			toks = append(toks, token{tokOp, string(c), pos})
		case c == '(':
			toks = append(toks, token{tokLParen, "(", pos})
		case c == ')':
			toks = append(toks, token{tokRParen, ")", pos})
		case c == ',':
			toks = append(toks, token{tokComma, ",", pos})
		case c == '=':
			toks = append(toks, token{tokAssign, "=", pos})
		default:
			return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
		i++
		col++
	}
	toks = append(toks, token{tokEOF, "", Position{Line: line, Col: col}})
	return toks, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

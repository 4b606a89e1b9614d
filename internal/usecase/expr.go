package usecase

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrMalformedExpression is returned for any input outside the calculator grammar
var ErrMalformedExpression = errors.New("malformed expression")

// ErrDivisionByZero is returned when a divisor evaluates to zero
var ErrDivisionByZero = errors.New("division by zero")

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
	tokPi
	tokFunc
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

var functions = map[string]func(float64) float64{
	"sin": math.Sin,
	"cos": math.Cos,
	"tan": math.Tan,
	"log": math.Log10,
}

// Evaluate computes a calculator expression. The grammar is
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("×" | "÷") unary }
//	unary   = ("+" | "-") unary | primary
//	primary = number | "π" | func unary | "(" expr ")"
//
// Juxtaposition ("2π", "3(4)") is rejected. Trig functions take radians and
// log is base 10.
func Evaluate(input string) (float64, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return 0, err
	}
	p := &parser{tokens: tokens}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.peek().kind != tokEOF {
		return 0, fmt.Errorf("%w: unexpected %q", ErrMalformedExpression, p.peek().text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: result is not finite", ErrMalformedExpression)
	}
	return v, nil
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			text := string(runes[start:i])
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", ErrMalformedExpression, text)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, num: n})
		case r == '+' || r == '-':
			tokens = append(tokens, token{kind: tokOp, text: string(r)})
			i++
		case r == '×' || r == '*':
			tokens = append(tokens, token{kind: tokOp, text: "×"})
			i++
		case r == '÷' || r == '/':
			tokens = append(tokens, token{kind: tokOp, text: "÷"})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		case r == 'π':
			tokens = append(tokens, token{kind: tokPi, text: "π"})
			i++
		case unicode.IsLetter(r):
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) && runes[i] != 'π' {
				i++
			}
			name := strings.ToLower(string(runes[start:i]))
			if _, ok := functions[name]; !ok {
				return nil, fmt.Errorf("%w: unknown function %q", ErrMalformedExpression, name)
			}
			tokens = append(tokens, token{kind: tokFunc, text: name})
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrMalformedExpression, string(r))
		}
	}
	return append(tokens, token{kind: tokEOF}), nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for t := p.peek(); t.kind == tokOp && (t.text == "+" || t.text == "-"); t = p.peek() {
		p.next()
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if t.text == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for t := p.peek(); t.kind == tokOp && (t.text == "×" || t.text == "÷"); t = p.peek() {
		p.next()
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if t.text == "×" {
			left *= right
			continue
		}
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		left /= right
	}
	return left, nil
}

func (p *parser) unary() (float64, error) {
	if t := p.peek(); t.kind == tokOp && (t.text == "+" || t.text == "-") {
		p.next()
		v, err := p.unary()
		if t.text == "-" {
			v = -v
		}
		return v, err
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return t.num, nil
	case tokPi:
		return math.Pi, nil
	case tokFunc:
		arg, err := p.unary()
		if err != nil {
			return 0, err
		}
		return functions[t.text](arg), nil
	case tokLParen:
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.next().kind != tokRParen {
			return 0, fmt.Errorf("%w: missing )", ErrMalformedExpression)
		}
		return v, nil
	case tokEOF:
		return 0, fmt.Errorf("%w: unexpected end of input", ErrMalformedExpression)
	default:
		return 0, fmt.Errorf("%w: unexpected %q", ErrMalformedExpression, t.text)
	}
}

// FormatResult renders v with at most four decimals and no trailing zeros
func FormatResult(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

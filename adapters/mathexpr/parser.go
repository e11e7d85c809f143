package mathexpr

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"anastat/internal/errors"
)

// node is one expression tree node.
type node interface {
	eval(vars map[string]float64) (float64, error)
}

type numberNode float64

func (n numberNode) eval(map[string]float64) (float64, error) {
	return float64(n), nil
}

type variableNode string

func (n variableNode) eval(vars map[string]float64) (float64, error) {
	v, ok := vars[string(n)]
	if !ok {
		return 0, errors.InvalidInputf("unknown variable %q", string(n))
	}
	return v, nil
}

type binaryNode struct {
	op          byte
	left, right node
}

func (n binaryNode) eval(vars map[string]float64) (float64, error) {
	l, err := n.left.eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(vars)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		return l / r, nil
	case '^':
		return math.Pow(l, r), nil
	}
	return 0, errors.InvalidInputf("unknown operator %q", string(n.op))
}

type unaryNode struct {
	operand node
}

func (n unaryNode) eval(vars map[string]float64) (float64, error) {
	v, err := n.operand.eval(vars)
	return -v, err
}

type callNode struct {
	name string
	arg  node
}

var functions = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"exp":   math.Exp,
	"ln":    math.Log,
	"log":   math.Log,
	"log10": math.Log10,
	"log2":  math.Log2,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

func (n callNode) eval(vars map[string]float64) (float64, error) {
	fn, ok := functions[n.name]
	if !ok {
		return 0, errors.InvalidInputf("unknown function %q", n.name)
	}
	v, err := n.arg.eval(vars)
	if err != nil {
		return 0, err
	}
	return fn(v), nil
}

// Expression is a parsed formula ready for repeated evaluation.
type Expression struct {
	root node
	text string
}

// Parse compiles the formula. Supported grammar: + - * / ^ with usual
// precedence, parentheses, unary minus, one-argument functions, the
// constants pi and e, and identifiers as free variables.
func Parse(formula string) (*Expression, error) {
	p := &parser{input: strings.TrimSpace(formula)}
	if p.input == "" {
		return nil, errors.InvalidInput("empty formula")
	}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, errors.InvalidInputf("unexpected input at position %d: %q", p.pos, p.input[p.pos:])
	}
	return &Expression{root: root, text: formula}, nil
}

// Eval evaluates at the given variable binding.
func (e *Expression) Eval(vars map[string]float64) (float64, error) {
	return e.root.eval(vars)
}

// String returns the original formula text.
func (e *Expression) String() string {
	return e.text
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// parseExpr handles + and -.
func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

// parseTerm handles * and /.
func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

// parseUnary handles leading minus.
func (p *parser) parseUnary() (node, error) {
	if p.peek() == '-' {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{operand: operand}, nil
	}
	return p.parsePower()
}

// parsePower handles right-associative ^.
func (p *parser) parsePower() (node, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	exponent, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return binaryNode{op: '^', left: base, right: exponent}, nil
}

func (p *parser) parseAtom() (node, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, errors.InvalidInputf("missing closing parenthesis at position %d", p.pos)
		}
		p.pos++
		return inner, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case isIdentStart(rune(c)):
		return p.parseIdent()
	case c == 0:
		return nil, errors.InvalidInput("unexpected end of formula")
	default:
		return nil, errors.InvalidInputf("unexpected character %q at position %d", string(c), p.pos)
	}
}

func (p *parser) parseNumber() (node, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' ||
			((c == '+' || c == '-') && p.pos > start && (p.input[p.pos-1] == 'e' || p.input[p.pos-1] == 'E')) {
			p.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return nil, errors.InvalidInputf("invalid number %q", p.input[start:p.pos])
	}
	return numberNode(v), nil
}

func (p *parser) parseIdent() (node, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentPart(rune(p.input[p.pos])) {
		p.pos++
	}
	name := p.input[start:p.pos]

	if p.peek() == '(' {
		if _, ok := functions[name]; !ok {
			return nil, errors.InvalidInputf("unknown function %q", name)
		}
		p.pos++
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, errors.InvalidInputf("missing closing parenthesis in call to %q", name)
		}
		p.pos++
		return callNode{name: name, arg: arg}, nil
	}

	if v, ok := constants[name]; ok {
		return numberNode(v), nil
	}
	return variableNode(name), nil
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// ABOUTME: Calculator provider backed by a small arithmetic parser
// ABOUTME: Recursive descent over + - * / ( ), unary minus, and decimals
package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/harper/jarvis/internal/dispatch"
)

// ErrDivisionByZero is returned when an expression divides by zero
var ErrDivisionByZero = errors.New("division by zero")

var wordOperators = strings.NewReplacer(
	"multiplied by", "*",
	"divided by", "/",
	"plus", "+",
	"minus", "-",
	"times", "*",
)

// Calculator evaluates the arithmetic found in a query. Failures are
// reported in the result with success=false, not as provider errors.
func Calculator() dispatch.Provider {
	return func(_ context.Context, query string) (dispatch.Result, error) {
		expr := ExtractExpression(query)
		if expr == "" {
			return dispatch.Result{"success": false, "message": "No valid mathematical expression found"}, nil
		}

		value, err := Evaluate(expr)
		if err != nil {
			return dispatch.Result{"success": false, "expression": expr, "error": err.Error()}, nil
		}

		return dispatch.Result{
			"success":          true,
			"expression":       expr,
			"result":           value,
			"formatted_result": FormatNumber(value),
		}, nil
	}
}

// ExtractExpression rewrites word operators to symbols and keeps only
// arithmetic characters, e.g. "calculate 25 times 4" -> "25*4"
func ExtractExpression(query string) string {
	rewritten := wordOperators.Replace(strings.ToLower(query))

	var b strings.Builder
	for _, r := range rewritten {
		if strings.ContainsRune("0123456789+-*/().", r) {
			b.WriteRune(r)
		}
	}
	expr := strings.Trim(b.String(), ".")
	if !strings.ContainsAny(expr, "0123456789") {
		return ""
	}
	return expr
}

// Evaluate computes an arithmetic expression
func Evaluate(expr string) (float64, error) {
	p := &parser{input: strings.ReplaceAll(expr, " ", "")}
	if p.input == "" {
		return 0, errors.New("empty expression")
	}

	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.New("result out of range")
	}
	return v, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// expr := term (('+' | '-') term)*
func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

// term := unary (('*' | '/') unary)*
func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left /= right
		}
	}
}

// unary := ('-' | '+') unary | primary
func (p *parser) unary() (float64, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary()
		return -v, err
	case '+':
		p.pos++
		return p.unary()
	}
	return p.primary()
}

// primary := number | '(' expr ')'
func (p *parser) primary() (float64, error) {
	if p.peek() == '(' {
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		if p.pos >= len(p.input) {
			return 0, errors.New("unexpected end of expression")
		}
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}

	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return v, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// FormatNumber renders v without trailing zeros and with thousands separators
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		return sign + b.String() + "." + frac
	}
	return sign + b.String()
}

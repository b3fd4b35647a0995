package expression

import (
	"strconv"
	"strings"
	"unicode"

	ierr "github.com/flexprice/flexprice/internal/errors"
)

// EvaluateArithmetic evaluates a restricted arithmetic expression after
// substituting each "{var}" placeholder with its bound value. Per the
// composite-metric formula rule, the token set is deliberately narrow:
// digits, a decimal point, the four basic operators, parentheses, and
// whitespace. Any other character fails evaluation rather than being
// passed through to a general-purpose expression engine.
func EvaluateArithmetic(expression string, variables map[string]float64) (float64, error) {
	substituted, err := substitute(expression, variables)
	if err != nil {
		return 0, err
	}

	p := &arithParser{input: substituted}
	p.skipSpace()
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, ierr.NewError("unexpected token in expression").
			WithReportableDetails(map[string]interface{}{"position": p.pos, "expression": expression}).
			Mark(ierr.ErrValidation)
	}
	return value, nil
}

// substitute replaces every "{name}" placeholder with its numeric value
// and validates that only the allowed character set remains.
func substitute(expression string, variables map[string]float64) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(expression) {
		c := expression[i]
		if c == '{' {
			end := strings.IndexByte(expression[i:], '}')
			if end == -1 {
				return "", ierr.NewError("unterminated variable placeholder").
					WithReportableDetails(map[string]interface{}{"expression": expression}).
					Mark(ierr.ErrValidation)
			}
			name := expression[i+1 : i+end]
			value, ok := variables[name]
			if !ok {
				return "", ierr.NewError("unbound variable in formula").
					WithReportableDetails(map[string]interface{}{"variable": name}).
					Mark(ierr.ErrValidation)
			}
			b.WriteString(strconv.FormatFloat(value, 'f', -1, 64))
			i += end + 1
			continue
		}
		if !isAllowedToken(rune(c)) {
			return "", ierr.NewError("disallowed token in expression").
				WithReportableDetails(map[string]interface{}{"token": string(c), "expression": expression}).
				Mark(ierr.ErrValidation)
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), nil
}

func isAllowedToken(r rune) bool {
	if unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '.', '+', '-', '*', '/', '(', ')', ' ', '\t', '\n':
		return true
	default:
		return false
	}
}

// arithParser is a minimal recursive-descent parser/evaluator for
// +, -, *, /, parentheses, and decimal literals, respecting standard
// precedence (* / bind tighter than + -) and left associativity.
type arithParser struct {
	input string
	pos   int
}

func (p *arithParser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *arithParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// parseExpr := term (('+' | '-') term)*
func (p *arithParser) parseExpr() (float64, error) {
	value, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value -= rhs
		default:
			return value, nil
		}
	}
}

// parseTerm := factor (('*' | '/') factor)*
func (p *arithParser) parseTerm() (float64, error) {
	value, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			value *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, ierr.NewError("division by zero in formula").Mark(ierr.ErrValidation)
			}
			value /= rhs
		default:
			return value, nil
		}
	}
}

// parseFactor := number | '(' expr ')' | ('+' | '-') factor
func (p *arithParser) parseFactor() (float64, error) {
	p.skipSpace()
	switch p.peek() {
	case '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, ierr.NewError("missing closing parenthesis").Mark(ierr.ErrValidation)
		}
		p.pos++
		return value, nil
	case '-':
		p.pos++
		value, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case '+':
		p.pos++
		return p.parseFactor()
	default:
		return p.parseNumber()
	}
}

func (p *arithParser) parseNumber() (float64, error) {
	start := p.pos
	seenDigit := false
	seenDot := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c >= '0' && c <= '9' {
			seenDigit = true
			p.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}
	if !seenDigit {
		return 0, ierr.NewError("expected a number in expression").
			WithReportableDetails(map[string]interface{}{"position": start}).
			Mark(ierr.ErrValidation)
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, ierr.NewError("invalid numeric literal").WithError(err).Mark(ierr.ErrValidation)
	}
	return value, nil
}

// EvaluateWeightedSum implements the "weighted_sum" built-in function:
// sum over metric -> weight pairs of weight * inputs[metric]. Unknown
// function names are rejected by the caller before this is reached.
func EvaluateWeightedSum(weights map[string]float64, inputs map[string]float64) (float64, error) {
	total := 0.0
	for metricName, weight := range weights {
		value, ok := inputs[metricName]
		if !ok {
			return 0, ierr.NewError("weighted_sum references an unbound metric").
				WithReportableDetails(map[string]interface{}{"metric": metricName}).
				Mark(ierr.ErrValidation)
		}
		total += weight * value
	}
	return total, nil
}

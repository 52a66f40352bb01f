package value

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	fractionLiteral = regexp.MustCompile(`^frac\{\s*([+-]?[0-9]+)\s*/\s*([+-]?[0-9]+)\s*\}$`)
	variableLiteral = regexp.MustCompile(`^([+-]?)([0-9]*(?:[.,][0-9]+)?)([a-zA-Z])(?:\^([+-]?[0-9]+(?:[.,][0-9]+)?))?$`)
)

// Parse parses the text of a single value: an integer, a decimal with '.' or
// ',' as the separator, a fraction literal such as frac{1/2}, or a variable
// term such as a, -2b or 3x^2.
func Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty value")
	}

	if m := fractionLiteral.FindStringSubmatch(s); m != nil {
		num, err := parseNumber(m[1])
		if err != nil {
			return nil, err
		}
		den, err := parseNumber(m[2])
		if err != nil {
			return nil, err
		}
		return NewFraction(num, den)
	}

	if m := variableLiteral.FindStringSubmatch(s); m != nil {
		v := NewVariable(m[3])
		if m[2] != "" {
			coef, err := parseNumber(m[2])
			if err != nil {
				return nil, err
			}
			v.Coef = coef
		}
		if m[1] == "-" {
			v.Coef = v.Coef.Negate()
		}
		if m[4] != "" {
			exp, err := parseNumber(m[4])
			if err != nil {
				return nil, err
			}
			v.Power = exp
		}
		return v, nil
	}

	return parseNumber(s)
}

// MustParse is like Parse but panics if s is not a valid value.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return v
}

func parseNumber(s string) (Value, error) {
	if strings.ContainsAny(s, ".,") {
		return ParseFloat(s)
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return Integer(i), nil
	}
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil, fmt.Errorf("%q is not a number: %w", s, ferr)
		}
		return NewFloat(f), nil
	}
	return nil, fmt.Errorf("%q is not a number", s)
}

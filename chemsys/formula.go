// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chemsys

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Formula is a parsed chemical formula: elemental composition and electric charge.
//
// Accepted syntax: element symbols with optional (possibly fractional) counts,
// parenthesized groups with multipliers and a trailing charge written as
// "+", "++", "+2", "-", "--", "-2" or "[2+]". A trailing aggregate state tag such
// as "(aq)", "(g)" or "(s)" is ignored, so species names can be parsed directly.
type Formula struct {
	str      string
	elements map[string]float64
	charge   float64
}

// ParseFormula parses a chemical formula such as "CaCO3", "Ca(OH)2", "SO4-2" or "CO2(g)".
func ParseFormula(s string) (Formula, error) {
	src := strings.TrimSpace(s)
	body := stripStateTag(src)
	if body == "" {
		return Formula{}, fmt.Errorf("%w: %q", ErrBadFormula, s)
	}

	body, charge, err := splitCharge(body)
	if err != nil {
		return Formula{}, fmt.Errorf("%w: %q: %v", ErrBadFormula, s, err)
	}

	p := formulaParser{src: body}
	elems, err := p.group()
	if err == nil && p.pos != len(p.src) {
		err = fmt.Errorf("unexpected %q at %d", p.src[p.pos], p.pos)
	}
	if err != nil {
		return Formula{}, fmt.Errorf("%w: %q: %v", ErrBadFormula, s, err)
	}
	return Formula{str: src, elements: elems, charge: charge}, nil
}

// MustParseFormula is like ParseFormula but panics on error.
func MustParseFormula(s string) Formula {
	f, err := ParseFormula(s)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Formula) String() string { return f.str }

// Charge returns the electric charge.
func (f Formula) Charge() float64 { return f.charge }

// Coefficient returns the number of atoms of the element in the formula.
func (f Formula) Coefficient(symbol string) float64 { return f.elements[symbol] }

// Symbols returns the element symbols of the formula in ascending order.
func (f Formula) Symbols() []string {
	syms := make([]string, 0, len(f.elements))
	for s := range f.elements {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

// Elements returns a copy of the elemental composition.
func (f Formula) Elements() map[string]float64 {
	m := make(map[string]float64, len(f.elements))
	for k, v := range f.elements {
		m[k] = v
	}
	return m
}

// MolarMass returns the molar mass in kg/mol.
func (f Formula) MolarMass() float64 {
	mm := 0.0
	for s, c := range f.elements {
		e, _ := LookupElement(s) // parser guarantees the symbol is known
		mm += c * e.MolarMass
	}
	return mm
}

// Equivalent reports whether two formulas have the same composition and charge.
func (f Formula) Equivalent(o Formula) bool {
	if f.charge != o.charge || len(f.elements) != len(o.elements) {
		return false
	}
	for s, c := range f.elements {
		if o.elements[s] != c {
			return false
		}
	}
	return true
}

func stripStateTag(s string) string {
	if !strings.HasSuffix(s, ")") {
		return s
	}
	open := strings.LastIndexByte(s, '(')
	if open <= 0 {
		return s
	}
	tag := s[open+1 : len(s)-1]
	for _, r := range tag {
		if r < 'a' || r > 'z' {
			return s
		}
	}
	return s[:open]
}

func splitCharge(s string) (string, float64, error) {
	if strings.HasSuffix(s, "]") {
		open := strings.LastIndexByte(s, '[')
		if open < 0 {
			return "", 0, fmt.Errorf("unbalanced charge bracket")
		}
		spec := s[open+1 : len(s)-1]
		if spec == "" {
			return "", 0, fmt.Errorf("empty charge")
		}
		sign := spec[len(spec)-1]
		if sign != '+' && sign != '-' {
			return "", 0, fmt.Errorf("bad charge %q", spec)
		}
		mag := 1.0
		if digits := spec[:len(spec)-1]; digits != "" {
			v, err := strconv.ParseFloat(digits, 64)
			if err != nil {
				return "", 0, err
			}
			mag = v
		}
		if sign == '-' {
			mag = -mag
		}
		return s[:open], mag, nil
	}

	i := strings.IndexAny(s, "+-")
	if i < 0 {
		return s, 0, nil
	}
	spec := s[i:]
	sign := 1.0
	if spec[0] == '-' {
		sign = -1
	}
	n := 0
	for n < len(spec) && spec[n] == spec[0] {
		n++
	}
	if rest := spec[n:]; rest != "" {
		if n > 1 {
			return "", 0, fmt.Errorf("bad charge %q", spec)
		}
		v, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return "", 0, err
		}
		return s[:i], sign * v, nil
	}
	return s[:i], sign * float64(n), nil
}

type formulaParser struct {
	src string
	pos int
}

// group parses a sequence of element terms and parenthesized groups until ')' or the end.
func (p *formulaParser) group() (map[string]float64, error) {
	elems := map[string]float64{}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == ')':
			return elems, nil
		case c == '(':
			p.pos++
			inner, err := p.group()
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.src) || p.src[p.pos] != ')' {
				return nil, fmt.Errorf("unbalanced parenthesis")
			}
			p.pos++
			k, err := p.count()
			if err != nil {
				return nil, err
			}
			for s, v := range inner {
				elems[s] += k * v
			}
		case c >= 'A' && c <= 'Z':
			start := p.pos
			p.pos++
			for p.pos < len(p.src) && p.src[p.pos] >= 'a' && p.src[p.pos] <= 'z' {
				p.pos++
			}
			sym := p.src[start:p.pos]
			if _, err := LookupElement(sym); err != nil {
				return nil, err
			}
			k, err := p.count()
			if err != nil {
				return nil, err
			}
			elems[sym] += k
		default:
			return nil, fmt.Errorf("unexpected %q at %d", c, p.pos)
		}
	}
	return elems, nil
}

func (p *formulaParser) count() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 1, nil
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, fmt.Errorf("bad count %q", p.src[start:p.pos])
	}
	return v, nil
}

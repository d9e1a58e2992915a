/*
expr.go Live algebraic expression graphs. Parameter and state variables are leaves,
derived quantities are built as nodes over them. Re-evaluating a graph after a
variable update reflects the new value.
*/

package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Expr is a node in an expression graph.
type Expr interface {
	Value() float64
	String() string
}

// Var is a named, bounded decision variable.
type Var struct {
	name   string
	value  float64
	lower  float64
	upper  float64
	fixed  bool
}

// NewVar returns a variable bounded to [lower, upper].
func NewVar(name string, init, lower, upper float64) *Var {
	return &Var{name: name, value: init, lower: lower, upper: upper}
}

// NewFixedVar returns an unbounded variable holding a fixed value.
func NewFixedVar(name string, value float64) *Var {
	return &Var{name: name, value: value, lower: math.Inf(-1), upper: math.Inf(1), fixed: true}
}

// Set assigns a value to the variable. Bounds are enforced.
func (v *Var) Set(x float64) error {
	if x < v.lower || x > v.upper {
		return fmt.Errorf("value %v outside bounds [%v, %v] for %v", x, v.lower, v.upper, v.name)
	}
	v.value = x
	return nil
}

// Fix assigns a value and marks the variable fixed.
func (v *Var) Fix(x float64) {
	v.value = x
	v.fixed = true
}

// Fixed reports whether the variable is held fixed.
func (v *Var) Fixed() bool {
	return v.fixed
}

// Name is a getter for the variable name.
func (v Var) Name() string {
	return v.name
}

// Bounds returns the variable's lower and upper bounds.
func (v Var) Bounds() (float64, float64) {
	return v.lower, v.upper
}

func (v Var) Value() float64 {
	return v.value
}

func (v Var) String() string {
	return v.name
}

// Param is a named model parameter. Immutable parameters reject assignment.
type Param struct {
	name    string
	value   float64
	mutable bool
}

// NewParam returns a parameter. Mutable parameters may be reassigned with Set.
func NewParam(name string, value float64, mutable bool) *Param {
	return &Param{name: name, value: value, mutable: mutable}
}

// Set reassigns a mutable parameter.
func (p *Param) Set(x float64) error {
	if !p.mutable {
		return fmt.Errorf("parameter %v is not mutable", p.name)
	}
	p.value = x
	return nil
}

// Name is a getter for the parameter name.
func (p Param) Name() string {
	return p.name
}

func (p Param) Value() float64 {
	return p.value
}

func (p Param) String() string {
	return p.name
}

// Const is a literal value.
type Const float64

func (c Const) Value() float64 {
	return float64(c)
}

func (c Const) String() string {
	return strconv.FormatFloat(float64(c), 'g', -1, 64)
}

type sum struct {
	terms []Expr
}

// Sum returns the sum of the terms. A single term collapses to itself.
func Sum(terms ...Expr) Expr {
	if len(terms) == 1 {
		return terms[0]
	}
	return sum{terms}
}

func (s sum) Value() float64 {
	var acc float64
	for _, t := range s.terms {
		acc += t.Value()
	}
	return acc
}

func (s sum) String() string {
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

type prod struct {
	factors []Expr
}

// Prod returns the product of the factors. A single factor collapses to itself.
func Prod(factors ...Expr) Expr {
	if len(factors) == 1 {
		return factors[0]
	}
	return prod{factors}
}

func (p prod) Value() float64 {
	acc := 1.0
	for _, f := range p.factors {
		acc *= f.Value()
	}
	return acc
}

func (p prod) String() string {
	parts := make([]string, len(p.factors))
	for i, f := range p.factors {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, "*") + ")"
}

type div struct {
	num Expr
	den Expr
}

// Div returns the quotient num/den.
func Div(num, den Expr) Expr {
	return div{num, den}
}

func (d div) Value() float64 {
	return d.num.Value() / d.den.Value()
}

func (d div) String() string {
	return "(" + d.num.String() + "/" + d.den.String() + ")"
}

type neg struct {
	x Expr
}

// Neg returns the negation of x.
func Neg(x Expr) Expr {
	return neg{x}
}

func (n neg) Value() float64 {
	return -n.x.Value()
}

func (n neg) String() string {
	return "-" + n.x.String()
}

type expFn struct {
	x Expr
}

// Exp returns e raised to x.
func Exp(x Expr) Expr {
	return expFn{x}
}

func (e expFn) Value() float64 {
	return math.Exp(e.x.Value())
}

func (e expFn) String() string {
	return "exp(" + e.x.String() + ")"
}

type logFn struct {
	x Expr
}

// Log returns the natural logarithm of x.
func Log(x Expr) Expr {
	return logFn{x}
}

func (l logFn) Value() float64 {
	return math.Log(l.x.Value())
}

func (l logFn) String() string {
	return "log(" + l.x.String() + ")"
}

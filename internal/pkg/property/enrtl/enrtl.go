/*
enrtl.go Electrolyte non-random-two-liquid equation of state. BuildParameters
constructs the alpha and tau interaction parameters over the phase pair sets,
applying user overrides with symmetry validation. BuildState derives the
effective mole fraction (X), charge fraction (Y) and pairwise alpha/G/tau
expression graphs for each state.

Interaction parameters are indexed by interaction species: molecular species
and cation/anion pairs. Alpha is symmetric by convention and held on the
canonical ordering only; tau may be asymmetric and covers both orderings.
*/

package enrtl

import (
	"fmt"
	"log"

	"github.com/avercast/pse_core/internal/pkg/components"
	"github.com/avercast/pse_core/internal/pkg/expr"
	"github.com/avercast/pse_core/internal/pkg/property"
)

// ENRTL implements property.EquationOfState.
type ENRTL struct{}

func init() {
	property.RegisterEquationOfState("eNRTL", ENRTL{})
}

const (
	defaultAlphaMolecular = 0.3
	defaultAlpha          = 0.2
)

// BuildParameters constructs the alpha and tau parameter variables.
func (e ENRTL) BuildParameters(p *property.PhaseParams) error {
	p.Alpha = make(map[property.Pair]*expr.Var)
	for _, pr := range p.SymmetricPairSet() {
		def := defaultAlpha
		if p.IsMolecule(pr.A) && p.IsMolecule(pr.B) {
			def = defaultAlphaMolecular
		}
		name := fmt.Sprintf("%s.alpha[%s][%s]", p.Name(), pr.A, pr.B)
		p.Alpha[pr] = expr.NewFixedVar(name, def)
	}

	p.Tau = make(map[property.Pair]*expr.Var)
	for _, pr := range p.ComponentPairSet() {
		name := fmt.Sprintf("%s.tau[%s][%s]", p.Name(), pr.A, pr.B)
		p.Tau[pr] = expr.NewFixedVar(name, 0)
	}

	if err := e.applyAlphaData(p); err != nil {
		return err
	}
	return e.applyTauData(p)
}

func (e ENRTL) applyAlphaData(p *property.PhaseParams) error {
	seen := make(map[property.Pair]components.PairEntry)
	for _, entry := range p.ParameterData().Alpha {
		pr := property.Pair{A: entry.A, B: entry.B}
		if !p.InPairSet(pr) {
			return components.NewConfigurationError(
				"%s eNRTL alpha parameter provided for invalid component pair "+
					"(%s, %s). Please check typing and only provide parameters "+
					"for valid species pairs.", p.Name(), entry.A, entry.B)
		}

		canon := p.Canonical(pr)
		if prev, ok := seen[canon]; ok {
			if prev.Value != entry.Value {
				return components.NewConfigurationError(
					"%s eNRTL alpha parameter assigned non-symmetric value for "+
						"pair (%s, %s). Please assign only one value for "+
						"component pair.", p.Name(), entry.A, entry.B)
			}
			log.Printf("eNRTL alpha value provided for both (%s, %s) and "+
				"(%s, %s). It is only necessary to provide a value for one of "+
				"these due to symmetry.", prev.A, prev.B, entry.A, entry.B)
			continue
		}
		seen[canon] = entry
		p.Alpha[canon].Fix(entry.Value)
	}
	return nil
}

func (e ENRTL) applyTauData(p *property.PhaseParams) error {
	for _, entry := range p.ParameterData().Tau {
		pr := property.Pair{A: entry.A, B: entry.B}
		if !p.InPairSet(pr) {
			return components.NewConfigurationError(
				"%s eNRTL tau parameter provided for invalid component pair "+
					"(%s, %s). Please check typing and only provide parameters "+
					"for valid species pairs.", p.Name(), entry.A, entry.B)
		}
		p.Tau[pr].Fix(entry.Value)
	}
	return nil
}

// BuildState derives the X, Y and binary alpha/G/tau expressions for one state.
func (e ENRTL) BuildState(p *property.PhaseParams, s *property.State) error {
	phase := p.Name()

	x := make(map[string]expr.Expr)
	for _, j := range p.TrueSpecies() {
		v, ok := s.TrueMoleFrac(phase, j)
		if !ok {
			return fmt.Errorf("no true mole fraction for %v in phase %v", j, phase)
		}
		if p.IsMolecule(j) {
			x[j] = v
		} else {
			x[j] = expr.Prod(v, expr.Const(float64(p.Charge(j))))
		}
	}
	s.X[phase] = x

	y := make(map[string]expr.Expr)
	catSum := speciesSum(x, p.Cations())
	for _, c := range p.Cations() {
		y[c] = expr.Div(x[c], catSum)
	}
	anSum := speciesSum(x, p.Anions())
	for _, a := range p.Anions() {
		y[a] = expr.Div(x[a], anSum)
	}
	s.Y[phase] = y

	binAlpha := make(map[property.Pair]expr.Expr)
	binG := make(map[property.Pair]expr.Expr)
	binTau := make(map[property.Pair]expr.Expr)

	for _, i := range p.TrueSpecies() {
		for _, j := range p.TrueSpecies() {
			if i == j {
				continue
			}
			ci, cj := p.Charge(i), p.Charge(j)
			if ci != 0 && cj != 0 && (ci > 0) == (cj > 0) {
				// No interaction between like-charged ions.
				continue
			}

			pr := property.Pair{A: i, B: j}
			switch {
			case ci == 0 && cj == 0:
				canon := p.Canonical(pr)
				binAlpha[pr] = p.Alpha[canon]
				binG[pr] = expr.Exp(expr.Neg(expr.Prod(p.Alpha[canon], p.Tau[canon])))
				binTau[pr] = p.Tau[canon]
			case ci == 0:
				binAlpha[pr] = e.moleculeIonAlpha(p, y, i, j)
				binG[pr] = e.moleculeIonG(p, y, i, j)
			case cj == 0:
				binAlpha[pr] = e.moleculeIonAlpha(p, y, j, i)
				binG[pr] = e.moleculeIonG(p, y, j, i)
			default:
				binAlpha[pr] = e.ionIonAlpha(p, y, i, j)
				binG[pr] = e.ionIonG(p, y, i, j)
			}

			if !(ci == 0 && cj == 0) {
				binTau[pr] = expr.Div(expr.Neg(expr.Log(binG[pr])), binAlpha[pr])
			}
		}
	}
	s.BinaryAlpha[phase] = binAlpha
	s.BinaryG[phase] = binG
	s.BinaryTau[phase] = binTau

	return nil
}

// moleculeIonAlpha sums the ion-pair alpha parameters weighted by the charge
// fraction of the counter ions.
func (e ENRTL) moleculeIonAlpha(p *property.PhaseParams, y map[string]expr.Expr, m, ion string) expr.Expr {
	terms := make([]expr.Expr, 0)
	for _, counter := range counterIons(p, ion) {
		ip := ionPairName(p, ion, counter)
		canon := p.Canonical(property.Pair{A: m, B: ip})
		terms = append(terms, expr.Prod(y[counter], p.Alpha[canon]))
	}
	return termSum(terms)
}

// moleculeIonG mirrors moleculeIonAlpha with Boltzmann factors per ion pair.
// Ion pairs with no corresponding apparent species carry no measured molecule
// interaction data; for those the solvent-molecule factor is substituted.
func (e ENRTL) moleculeIonG(p *property.PhaseParams, y map[string]expr.Expr, m, ion string) expr.Expr {
	terms := make([]expr.Expr, 0)
	for _, counter := range counterIons(p, ion) {
		ip := ionPairName(p, ion, counter)
		pair := property.Pair{A: m, B: ip}
		if !p.HasApparent(ip) && m != p.Solvent() {
			pair = property.Pair{A: p.Solvent(), B: m}
		}
		canon := p.Canonical(pair)
		factor := expr.Exp(expr.Neg(expr.Prod(p.Alpha[canon], p.Tau[canon])))
		terms = append(terms, expr.Prod(y[counter], factor))
	}
	return termSum(terms)
}

// ionIonAlpha sums ion-pair/ion-pair alpha parameters over the other ions of
// the first species' charge class, weighted by their charge fractions.
func (e ENRTL) ionIonAlpha(p *property.PhaseParams, y map[string]expr.Expr, i, j string) expr.Expr {
	terms := make([]expr.Expr, 0)
	for _, other := range sameClassOthers(p, i) {
		base, alt := ionPairName(p, i, j), ionPairName(p, other, j)
		canon := p.Canonical(property.Pair{A: base, B: alt})
		terms = append(terms, expr.Prod(y[other], p.Alpha[canon]))
	}
	return termSum(terms)
}

func (e ENRTL) ionIonG(p *property.PhaseParams, y map[string]expr.Expr, i, j string) expr.Expr {
	terms := make([]expr.Expr, 0)
	for _, other := range sameClassOthers(p, i) {
		base, alt := ionPairName(p, i, j), ionPairName(p, other, j)
		canon := p.Canonical(property.Pair{A: base, B: alt})
		factor := expr.Exp(expr.Neg(expr.Prod(p.Alpha[canon], p.Tau[canon])))
		terms = append(terms, expr.Prod(y[other], factor))
	}
	return termSum(terms)
}

// counterIons returns the oppositely charged ions, in declaration order.
func counterIons(p *property.PhaseParams, ion string) []string {
	if p.Charge(ion) > 0 {
		return p.Anions()
	}
	return p.Cations()
}

// sameClassOthers returns the other ions of the same charge class.
func sameClassOthers(p *property.PhaseParams, ion string) []string {
	var class []string
	if p.Charge(ion) > 0 {
		class = p.Cations()
	} else {
		class = p.Anions()
	}
	others := make([]string, 0)
	for _, c := range class {
		if c != ion {
			others = append(others, c)
		}
	}
	return others
}

// ionPairName builds the interaction-species name for two opposite ions.
func ionPairName(p *property.PhaseParams, a, b string) string {
	if p.Charge(a) > 0 {
		return property.IonPair{Cation: a, Anion: b}.Name()
	}
	return property.IonPair{Cation: b, Anion: a}.Name()
}

func speciesSum(x map[string]expr.Expr, names []string) expr.Expr {
	terms := make([]expr.Expr, 0, len(names))
	for _, n := range names {
		terms = append(terms, x[n])
	}
	return termSum(terms)
}

func termSum(terms []expr.Expr) expr.Expr {
	if len(terms) == 0 {
		return expr.Const(0)
	}
	return expr.Sum(terms...)
}

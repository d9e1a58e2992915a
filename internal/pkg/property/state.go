/*
state.go State blocks hold the per-index state variables of the property
package: FTPx state (flow, temperature, pressure, apparent-basis mole
fractions), the true-species composition, and the expressions the equation of
state derives over them.
*/

package property

import (
	"fmt"

	"github.com/avercast/pse_core/internal/pkg/components"
	"github.com/avercast/pse_core/internal/pkg/expr"
)

// State is the material state at a single index.
type State struct {
	index  int
	params *ParameterBlock

	// FTPx state variables.
	FlowMol     *expr.Var
	Temperature *expr.Var
	Pressure    *expr.Var
	MoleFrac    map[string]*expr.Var

	moleFracTrue map[string]map[string]*expr.Var

	// Expressions derived by the equation of state, keyed by phase.
	X           map[string]map[string]expr.Expr
	Y           map[string]map[string]expr.Expr
	BinaryAlpha map[string]map[Pair]expr.Expr
	BinaryG     map[string]map[Pair]expr.Expr
	BinaryTau   map[string]map[Pair]expr.Expr
}

// StateBlock is an indexed collection of states.
type StateBlock map[int]*State

// BuildStateBlock constructs a state at each index and populates the derived
// expressions through each phase's equation of state.
func (pb *ParameterBlock) BuildStateBlock(indices []int) (StateBlock, error) {
	block := make(StateBlock)
	for _, idx := range indices {
		s, err := pb.newState(idx)
		if err != nil {
			return nil, err
		}
		block[idx] = s
	}
	return block, nil
}

func (pb *ParameterBlock) newState(idx int) (*State, error) {
	s := &State{
		index:        idx,
		params:       pb,
		MoleFrac:     make(map[string]*expr.Var),
		moleFracTrue: make(map[string]map[string]*expr.Var),
		X:            make(map[string]map[string]expr.Expr),
		Y:            make(map[string]map[string]expr.Expr),
		BinaryAlpha:  make(map[string]map[Pair]expr.Expr),
		BinaryG:      make(map[string]map[Pair]expr.Expr),
		BinaryTau:    make(map[string]map[Pair]expr.Expr),
	}

	tag := fmt.Sprintf("state[%d]", idx)
	s.FlowMol = expr.NewVar(tag+".flow_mol", 1, 0, 1e6)
	s.Temperature = expr.NewVar(tag+".temperature", pb.config.TemperatureRef, 0, 5000)
	s.Pressure = expr.NewVar(tag+".pressure", pb.config.PressureRef, 0, 1e9)

	apparentBasis := s.apparentBasis()
	for _, name := range apparentBasis {
		s.MoleFrac[name] = expr.NewVar(
			fmt.Sprintf("%s.mole_frac_comp[%s]", tag, name),
			1/float64(len(apparentBasis)), 0, 1)
	}

	for _, p := range pb.phases {
		trueFrac := make(map[string]*expr.Var)
		for _, name := range p.TrueSpecies() {
			trueFrac[name] = expr.NewVar(
				fmt.Sprintf("%s.%s.mole_frac_true[%s]", tag, p.Name(), name),
				1/float64(len(p.TrueSpecies())), 0, 1)
		}
		s.moleFracTrue[p.Name()] = trueFrac

		if err := p.eos.BuildState(p, s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Index is a getter for the state index.
func (s State) Index() int {
	return s.index
}

// apparentBasis returns the component names of the apparent composition basis.
func (s State) apparentBasis() []string {
	basis := make([]string, 0)
	for _, comp := range s.params.config.Components {
		if !comp.Ionic() {
			basis = append(basis, comp.Name)
		}
	}
	return basis
}

// TrueMoleFrac returns the true-species mole fraction variable.
func (s State) TrueMoleFrac(phase, species string) (*expr.Var, bool) {
	frac, ok := s.moleFracTrue[phase]
	if !ok {
		return nil, false
	}
	v, ok := frac[species]
	return v, ok
}

// SetComposition assigns the apparent-basis composition and derives the
// true-species mole fractions from the dissociation stoichiometry. Apparent
// species are assumed fully dissociated.
func (s *State) SetComposition(phase string, apparent map[string]float64) error {
	trueFrac, ok := s.moleFracTrue[phase]
	if !ok {
		return fmt.Errorf("unknown phase %v", phase)
	}

	moles := make(map[string]float64)
	var total float64
	for name, x := range apparent {
		v, ok := s.MoleFrac[name]
		if !ok {
			return components.NewConfigurationError(
				"composition provided for unknown component %v", name)
		}
		if err := v.Set(x); err != nil {
			return err
		}

		comp, _ := s.params.config.Component(name)
		if comp.Type == components.Apparent {
			for ion, coeff := range comp.Dissociation {
				moles[ion] += x * coeff
				total += x * coeff
			}
		} else {
			moles[name] += x
			total += x
		}
	}

	if total <= 0 {
		return fmt.Errorf("composition for phase %v sums to zero", phase)
	}

	for name, v := range trueFrac {
		if err := v.Set(moles[name] / total); err != nil {
			return err
		}
	}
	return nil
}

/*
property.go Generic property parameter block. Consumes a components.Config and
derives, per phase, the species classifications and interaction pair sets an
equation of state parameterizes. The equation of state is a plugin selected by
name from the phase configuration.
*/

package property

import (
	"github.com/google/uuid"

	"github.com/avercast/pse_core/internal/pkg/components"
	"github.com/avercast/pse_core/internal/pkg/expr"
)

// EquationOfState derives phase parameters and state expressions.
type EquationOfState interface {
	BuildParameters(p *PhaseParams) error
	BuildState(p *PhaseParams, s *State) error
}

var eosRegistry = make(map[string]EquationOfState)

// RegisterEquationOfState makes an equation of state selectable by name.
func RegisterEquationOfState(name string, eos EquationOfState) {
	eosRegistry[name] = eos
}

func equationOfState(name string) (EquationOfState, bool) {
	eos, ok := eosRegistry[name]
	return eos, ok
}

// Pair is an ordered species pair.
type Pair struct {
	A string
	B string
}

// IonPair is a cation/anion pairing treated as an interaction species.
type IonPair struct {
	Cation string
	Anion  string
}

// Name returns the interaction-species name of the ion pair.
func (ip IonPair) Name() string {
	return ip.Cation + ", " + ip.Anion
}

// PhaseParams holds the derived sets and parameters for a single phase.
type PhaseParams struct {
	name        string
	phase       components.Phase
	config      components.Config
	molecules   []string
	cations     []string
	anions      []string
	ionPairs    []IonPair
	species     []string
	speciesIdx  map[string]int
	trueSpecies []string
	pairSet     []Pair
	symmetric   []Pair
	apparent    map[string]bool
	paramData   components.ParameterData
	eos         EquationOfState

	// Alpha is the non-randomness parameter, indexed by symmetric pairs.
	Alpha map[Pair]*expr.Var
	// Tau is the binary interaction energy parameter, indexed by ordered pairs.
	Tau map[Pair]*expr.Var
}

// newPhaseParams derives the species and pair sets for one phase.
func newPhaseParams(cfg components.Config, phase components.Phase) *PhaseParams {
	p := &PhaseParams{
		name:       phase.Name,
		phase:      phase,
		config:     cfg,
		speciesIdx: make(map[string]int),
		apparent:   make(map[string]bool),
		paramData:  cfg.ParameterData[phase.Name],
	}

	p.molecules = append(cfg.OfType(components.Solvent), cfg.OfType(components.Solute)...)
	p.cations = cfg.OfType(components.Cation)
	p.anions = cfg.OfType(components.Anion)

	for _, c := range p.cations {
		for _, a := range p.anions {
			p.ionPairs = append(p.ionPairs, IonPair{Cation: c, Anion: a})
		}
	}

	p.species = append(p.species, p.molecules...)
	for _, ip := range p.ionPairs {
		p.species = append(p.species, ip.Name())
	}
	for i, s := range p.species {
		p.speciesIdx[s] = i
	}

	p.trueSpecies = append(p.trueSpecies, p.molecules...)
	p.trueSpecies = append(p.trueSpecies, p.cations...)
	p.trueSpecies = append(p.trueSpecies, p.anions...)

	// All ordered pairs of distinct interaction species, and the canonical
	// unordered subset.
	for i, a := range p.species {
		for j, b := range p.species {
			if i == j {
				continue
			}
			p.pairSet = append(p.pairSet, Pair{a, b})
			if i < j {
				p.symmetric = append(p.symmetric, Pair{a, b})
			}
		}
	}

	// Ion pairs with a corresponding apparent species carry measured
	// interaction data; the rest are bookkeeping entries.
	for _, ip := range p.ionPairs {
		for _, name := range cfg.OfType(components.Apparent) {
			app, _ := cfg.Component(name)
			_, hasCation := app.Dissociation[ip.Cation]
			_, hasAnion := app.Dissociation[ip.Anion]
			if hasCation && hasAnion {
				p.apparent[ip.Name()] = true
			}
		}
	}

	return p
}

// Name is a getter for the phase name.
func (p PhaseParams) Name() string {
	return p.name
}

// Config returns the phase declaration.
func (p PhaseParams) Config() components.Phase {
	return p.phase
}

// Molecules returns molecular species in canonical order (solvents first).
func (p PhaseParams) Molecules() []string {
	return p.molecules
}

// Cations returns cation names in declaration order.
func (p PhaseParams) Cations() []string {
	return p.cations
}

// Anions returns anion names in declaration order.
func (p PhaseParams) Anions() []string {
	return p.anions
}

// IonPairSet returns the cation/anion pairings in canonical order.
func (p PhaseParams) IonPairSet() []IonPair {
	return p.ionPairs
}

// Species returns the interaction species list: molecules then ion pairs.
func (p PhaseParams) Species() []string {
	return p.species
}

// TrueSpecies returns the physically present species in canonical order.
func (p PhaseParams) TrueSpecies() []string {
	return p.trueSpecies
}

// ComponentPairSet returns all ordered pairs of distinct interaction species.
func (p PhaseParams) ComponentPairSet() []Pair {
	return p.pairSet
}

// SymmetricPairSet returns the canonical unordered pair subset.
func (p PhaseParams) SymmetricPairSet() []Pair {
	return p.symmetric
}

// ParameterData returns the user-supplied parameters for this phase.
func (p PhaseParams) ParameterData() components.ParameterData {
	return p.paramData
}

// IsMolecule reports whether name is a molecular interaction species.
func (p PhaseParams) IsMolecule(name string) bool {
	idx, ok := p.speciesIdx[name]
	return ok && idx < len(p.molecules)
}

// Solvent returns the primary solvent of the phase.
func (p PhaseParams) Solvent() string {
	return p.molecules[0]
}

// HasApparent reports whether the named ion pair has a corresponding apparent
// species in the configuration.
func (p PhaseParams) HasApparent(ionPair string) bool {
	return p.apparent[ionPair]
}

// Canonical returns the pair ordered by interaction-species rank.
func (p PhaseParams) Canonical(pr Pair) Pair {
	if p.speciesIdx[pr.A] > p.speciesIdx[pr.B] {
		return Pair{pr.B, pr.A}
	}
	return pr
}

// InSymmetricSet reports whether the pair, as given, is a canonical member.
func (p PhaseParams) InSymmetricSet(pr Pair) bool {
	i, okA := p.speciesIdx[pr.A]
	j, okB := p.speciesIdx[pr.B]
	return okA && okB && i < j
}

// InPairSet reports whether the ordered pair is a member of the full set.
func (p PhaseParams) InPairSet(pr Pair) bool {
	i, okA := p.speciesIdx[pr.A]
	j, okB := p.speciesIdx[pr.B]
	return okA && okB && i != j
}

// Charge returns the signed charge of a true species, 0 for molecules.
func (p PhaseParams) Charge(name string) int {
	comp, ok := p.config.Component(name)
	if !ok {
		return 0
	}
	return comp.Charge
}

// ParameterBlock is the root property parameter structure.
type ParameterBlock struct {
	pid    uuid.UUID
	config components.Config
	phases []*PhaseParams
}

// NewParameterBlock validates the configuration and builds phase parameters
// through each phase's equation of state.
func NewParameterBlock(cfg components.Config) (*ParameterBlock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}

	pb := &ParameterBlock{pid: pid, config: cfg}

	for _, phase := range cfg.Phases {
		p := newPhaseParams(cfg, phase)
		eos, ok := equationOfState(phase.EquationOfState)
		if !ok {
			return nil, components.NewConfigurationError(
				"phase %v selects unknown equation of state %v",
				phase.Name, phase.EquationOfState)
		}
		p.eos = eos
		if err := eos.BuildParameters(p); err != nil {
			return nil, err
		}
		pb.phases = append(pb.phases, p)
	}

	return pb, nil
}

// PID is a getter for the parameter block's process id.
func (pb ParameterBlock) PID() uuid.UUID {
	return pb.pid
}

// Config returns the source configuration.
func (pb ParameterBlock) Config() components.Config {
	return pb.config
}

// Phases returns the phase parameter structures in declaration order.
func (pb ParameterBlock) Phases() []*PhaseParams {
	return pb.phases
}

// Phase returns the named phase parameter structure.
func (pb ParameterBlock) Phase(name string) (*PhaseParams, bool) {
	for _, p := range pb.phases {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

package components

import (
	"io/ioutil"
	"testing"

	"gotest.tools/assert"
)

func readTestConfig(t *testing.T) Config {
	jsonConfig, err := ioutil.ReadFile("enrtl_test_config.json")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := ParseConfig(jsonConfig)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestParseConfig(t *testing.T) {
	cfg := readTestConfig(t)

	assert.Equal(t, len(cfg.Components), 9)
	assert.Equal(t, len(cfg.Phases), 1)
	assert.Equal(t, cfg.Phases[0].Name, "Liq")
	assert.Equal(t, cfg.Phases[0].Type, Aqueous)
	assert.Equal(t, cfg.Phases[0].EquationOfState, "eNRTL")
	assert.Equal(t, cfg.StateDefinition, "FTPx")
	assert.Equal(t, cfg.PressureRef, 1e5)
	assert.Equal(t, cfg.TemperatureRef, 300.0)
	assert.Equal(t, cfg.BaseUnits["temperature"], "K")
}

func TestDeclarationOrderPreserved(t *testing.T) {
	cfg := readTestConfig(t)

	solvents := cfg.OfType(Solvent)
	assert.DeepEqual(t, solvents, []string{"H2O"})

	cations := cfg.OfType(Cation)
	assert.DeepEqual(t, cations, []string{"Na+", "H+"})

	anions := cfg.OfType(Anion)
	assert.DeepEqual(t, anions, []string{"Cl-", "OH-"})

	apparents := cfg.OfType(Apparent)
	assert.DeepEqual(t, apparents, []string{"NaCl", "HCl", "NaOH"})
}

func TestComponentLookup(t *testing.T) {
	cfg := readTestConfig(t)

	na, ok := cfg.Component("Na+")
	assert.Assert(t, ok)
	assert.Equal(t, na.Charge, 1)
	assert.Assert(t, na.Ionic())
	assert.Assert(t, !na.Molecular())

	nacl, ok := cfg.Component("NaCl")
	assert.Assert(t, ok)
	assert.Equal(t, nacl.Dissociation["Na+"], 1.0)
	assert.Equal(t, nacl.Dissociation["Cl-"], 1.0)

	_, ok = cfg.Component("KCl")
	assert.Assert(t, !ok)
}

func TestValidateChargeSign(t *testing.T) {
	cfg := readTestConfig(t)
	for i := range cfg.Components {
		if cfg.Components[i].Name == "Na+" {
			cfg.Components[i].Charge = -1
		}
	}

	err := cfg.Validate()
	assert.Assert(t, err != nil)
	assert.Assert(t, IsConfigurationError(err))
}

func TestValidateDissociationTargets(t *testing.T) {
	cfg := readTestConfig(t)
	for i := range cfg.Components {
		if cfg.Components[i].Name == "NaCl" {
			cfg.Components[i].Dissociation = map[string]float64{"K+": 1, "Cl-": 1}
		}
	}

	err := cfg.Validate()
	assert.Assert(t, err != nil)
	assert.ErrorContains(t, err, "undeclared species")
}

func TestValidateApparentWithoutDissociation(t *testing.T) {
	cfg := readTestConfig(t)
	for i := range cfg.Components {
		if cfg.Components[i].Name == "HCl" {
			cfg.Components[i].Dissociation = nil
		}
	}

	err := cfg.Validate()
	assert.Assert(t, err != nil)
	assert.ErrorContains(t, err, "dissociation")
}

func TestValidateSingleAqueousSolvent(t *testing.T) {
	cfg := readTestConfig(t)
	cfg.Components = append(cfg.Components, Component{Name: "MeOH", Type: Solvent})

	err := cfg.Validate()
	assert.Assert(t, err != nil)
	assert.ErrorContains(t, err, "single solvent")
}

func TestValidateBaseUnits(t *testing.T) {
	cfg := readTestConfig(t)
	delete(cfg.BaseUnits, "amount")

	err := cfg.Validate()
	assert.Assert(t, err != nil)
	assert.ErrorContains(t, err, "base_units missing amount")
}

func TestValidateUnknownStateDefinition(t *testing.T) {
	cfg := readTestConfig(t)
	cfg.StateDefinition = "FcTP"

	err := cfg.Validate()
	assert.Assert(t, err != nil)
	assert.ErrorContains(t, err, "state definition")
}

func TestValidateParameterDataPhase(t *testing.T) {
	cfg := readTestConfig(t)
	cfg.ParameterData = map[string]ParameterData{
		"Vap": {Alpha: []PairEntry{{A: "H2O", B: "C6H12", Value: 0.5}}},
	}

	err := cfg.Validate()
	assert.Assert(t, err != nil)
	assert.ErrorContains(t, err, "undeclared phase")
}

func TestValidateDuplicateComponent(t *testing.T) {
	cfg := readTestConfig(t)
	cfg.Components = append(cfg.Components, Component{Name: "H2O", Type: Solvent})

	err := cfg.Validate()
	assert.Assert(t, err != nil)
	assert.ErrorContains(t, err, "more than once")
}

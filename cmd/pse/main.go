package main

import (
	"io/ioutil"
	"log"

	"github.com/avercast/pse_core/internal/pkg/components"
	"github.com/avercast/pse_core/internal/pkg/property"

	_ "github.com/avercast/pse_core/internal/pkg/property/enrtl"
)

func main() {
	log.Println("[Main] Starting PSE_Core v0.0.1")

	jsonConfig, err := ioutil.ReadFile("./config/property/enrtl.json")
	if err != nil {
		panic(err)
	}

	cfg, err := components.ParseConfig(jsonConfig)
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Building Parameter Block")
	pb, err := property.NewParameterBlock(cfg)
	if err != nil {
		panic(err)
	}

	for _, p := range pb.Phases() {
		log.Printf("[Main] phase %v: %v interaction species, %v pairs, %v symmetric",
			p.Name(), len(p.Species()), len(p.ComponentPairSet()), len(p.SymmetricPairSet()))
	}

	log.Println("[Main] Building State Block")
	sb, err := pb.BuildStateBlock([]int{1})
	if err != nil {
		panic(err)
	}

	s := sb[1]
	composition := map[string]float64{
		"H2O": 0.80, "C6H12": 0.05, "NaCl": 0.05, "HCl": 0.05, "NaOH": 0.05,
	}
	for _, p := range pb.Phases() {
		if err := s.SetComposition(p.Name(), composition); err != nil {
			panic(err)
		}
		for species, y := range s.Y[p.Name()] {
			log.Printf("[Main] Y[%v] = %v", species, y.Value())
		}
		for pair, g := range s.BinaryG[p.Name()] {
			log.Printf("[Main] G(%v, %v) = %v", pair.A, pair.B, g.Value())
		}
	}

	log.Println("[Main] Shutdown")
}

package main

import (
	"io/ioutil"
	"log"

	"github.com/avercast/pse_core/internal/pkg/datastreams/mongodb"
	"github.com/avercast/pse_core/internal/pkg/datastreams/natshandler"
	"github.com/avercast/pse_core/internal/pkg/datastreams/sqldb"
	"github.com/avercast/pse_core/internal/pkg/generator"
	"github.com/avercast/pse_core/internal/pkg/sim"
)

func main() {
	log.Println("[Main] Starting GenSim v0.0.1")

	log.Println("[Main] Building Generator Model")
	model, err := buildModel()
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Building Forecaster")
	forecaster, err := buildForecaster()
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Building Simulation")
	simConfig, err := ioutil.ReadFile("./config/sim/sim.json")
	if err != nil {
		panic(err)
	}
	s, err := sim.New(simConfig, &model, forecaster)
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Connecting MongoDB Service")
	mongoHandler, err := mongodb.New("./config/datastream/mongodb_config.json", s)
	if err != nil {
		panic(err)
	}
	go mongoHandler.Process()

	log.Println("[Main] Connecting NATS Service")
	natsHandler, err := natshandler.New("./config/datastream/nats_config.json", s)
	if err != nil {
		panic(err)
	}
	go natsHandler.Process()

	log.Println("[Main] Connecting SQL Service")
	sqlHandler, err := sqldb.New("./config/datastream/sqldb_config.json", s)
	if err != nil {
		panic(err)
	}
	go sqlHandler.Process()

	log.Println("[Main] Running Simulation")
	if err := s.Run(); err != nil {
		panic(err)
	}

	mongoHandler.Stop()
	natsHandler.Stop()
	sqlHandler.Stop()
	log.Println("[Main] Simulation complete")
}

func buildModel() (generator.Model, error) {
	jsonConfig, err := ioutil.ReadFile("./config/generator/generator.json")
	if err != nil {
		return generator.Model{}, err
	}
	return generator.New(jsonConfig)
}

func buildForecaster() (generator.Forecaster, error) {
	jsonConfig, err := ioutil.ReadFile("./config/generator/forecaster.json")
	if err != nil {
		return generator.Forecaster{}, err
	}
	return generator.NewForecaster(jsonConfig)
}

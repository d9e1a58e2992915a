/*
sim.go Dispatch simulation harness. Steps a thermal generator model through a
day/hour loop against a price forecast: each hour the generator is dispatched
to capacity when the forecast price covers its marginal cost and to minimum
load otherwise. Operation stats are recorded per hour and broadcast to the
datastream handlers.
*/

package sim

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avercast/pse_core/internal/pkg/generator"
	"github.com/avercast/pse_core/internal/pkg/generator/modbusgen"
	"github.com/avercast/pse_core/internal/pkg/msg"
)

// DeviceController sources delivered power from plant hardware
type DeviceController interface {
	ReadDeviceStatus() (modbusgen.MachineStatus, error)
}

// Config differentiates one simulation run from another
type Config struct {
	Days        int     `json:"Days"`
	StartDate   string  `json:"StartDate"`
	BasePrice   float64 `json:"BasePrice"`
	ResultsPath string  `json:"ResultsPath"`
}

// Status is the per-hour broadcast of the simulation state
type Status struct {
	Generator      string  `json:"Generator"`
	Date           string  `json:"Date"`
	Hour           int     `json:"Hour"`
	Price          float64 `json:"Price"`
	DeliveredPower float64 `json:"DeliveredPower"`
}

// Sim couples a generator model with a forecaster and a result stream
type Sim struct {
	mux        *sync.Mutex
	pid        uuid.UUID
	config     Config
	model      *generator.Model
	forecaster generator.Forecaster
	publisher  *msg.PubSub
	device     DeviceController
}

// New is the Sim factory function
func New(jsonConfig []byte, model *generator.Model, forecaster generator.Forecaster) (Sim, error) {
	config := Config{}
	if err := json.Unmarshal(jsonConfig, &config); err != nil {
		return Sim{}, err
	}
	if config.Days <= 0 {
		return Sim{}, fmt.Errorf("simulation days must be positive")
	}
	if _, err := time.Parse("2006-01-02", config.StartDate); err != nil {
		return Sim{}, fmt.Errorf("bad start date %v: %v", config.StartDate, err)
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return Sim{}, err
	}

	return Sim{
		mux:        &sync.Mutex{},
		pid:        pid,
		config:     config,
		model:      model,
		forecaster: forecaster,
		publisher:  msg.NewPublisher(pid),
	}, nil
}

// PID process id
func (s Sim) PID() uuid.UUID {
	return s.pid
}

// AttachDevice switches the harness to hardware-in-the-loop mode: delivered
// power is read back from the device instead of the simulated profile.
func (s *Sim) AttachDevice(d DeviceController) {
	s.device = d
}

// Subscribe returns a channel on which the specified topic is broadcast
func (s Sim) Subscribe(pid uuid.UUID, topic msg.Topic) (<-chan msg.Msg, error) {
	return s.publisher.Subscribe(pid, topic)
}

// Unsubscribe pid from all topic broadcasts
func (s Sim) Unsubscribe(pid uuid.UUID) {
	s.publisher.Unsubscribe(pid)
}

// Run executes the day/hour loop and writes the recorded results
func (s Sim) Run() error {
	s.mux.Lock()
	defer s.mux.Unlock()

	start, _ := time.Parse("2006-01-02", s.config.StartDate)
	b := s.model.PopulateBlock()

	log.Printf("[Sim: %v] starting %v day run", s.model.Name(), s.config.Days)

	for day := 0; day < s.config.Days; day++ {
		date := start.AddDate(0, 0, day).Format("2006-01-02")
		for hour := 0; hour < 24; hour++ {
			price, err := s.step(b, date, hour)
			if err != nil {
				return err
			}

			delivered, err := s.deliveredPower(b)
			if err != nil {
				return err
			}
			s.publisher.Publish(msg.Status, Status{
				Generator:      s.model.Name(),
				Date:           date,
				Hour:           hour,
				Price:          price,
				DeliveredPower: delivered,
			})
		}
	}

	if s.config.ResultsPath != "" {
		if err := s.model.WriteResults(s.config.ResultsPath); err != nil {
			return err
		}
	}

	s.publisher.Publish(msg.Result, s.model.Results())
	log.Printf("[Sim: %v] run complete", s.model.Name())
	return nil
}

// step dispatches one hour: forecast the price, set the power profile, record
// the stats, and roll the block forward.
func (s Sim) step(b *generator.Block, date string, hour int) (float64, error) {
	forecast := s.forecaster.Forecast(date, hour, s.config.BasePrice)
	price := forecast[0][0]

	dispatch := dispatchLevel(s.model.Config(), price)
	for t := range b.Power {
		if err := b.Power[t].Set(dispatch); err != nil {
			return price, err
		}
	}

	s.model.RecordResults(b, date, hour, map[string]interface{}{
		"LMP [$/MWh]": price,
	})

	implemented, err := s.model.ImplementedProfile(b, 0)
	if err != nil {
		return price, err
	}
	return price, s.model.UpdateBlock(b, implemented)
}

// deliveredPower reports the first-hour output, from the device when one is
// attached and from the planning block otherwise.
func (s Sim) deliveredPower(b *generator.Block) (float64, error) {
	if s.device != nil {
		status, err := s.device.ReadDeviceStatus()
		if err != nil {
			log.Printf("[Sim: %v] device read: %v", s.model.Name(), err)
			return s.model.LastDeliveredPower(b, 0)
		}
		return status.DeliveredPower, nil
	}
	return s.model.LastDeliveredPower(b, 0)
}

// dispatchLevel is a single-unit economic dispatch: full capacity when the
// price covers marginal cost, minimum load otherwise.
func dispatchLevel(cfg generator.Config, price float64) float64 {
	if price >= cfg.MarginalCost {
		return cfg.Pmax
	}
	return cfg.Pmin
}

/*
generator.go Thermal generator model for dispatch simulation. The model builds
an hourly planning block of power variables and cost expressions, tracks the
implemented dispatch between solves, and records per-hour operation stats for
CSV export.
*/

package generator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/avercast/pse_core/internal/pkg/expr"
)

// Config differentiates one thermal generator from another
type Config struct {
	Name         string  `json:"Name"`
	Horizon      int     `json:"Horizon"`
	Pmin         float64 `json:"Pmin"`
	Pmax         float64 `json:"Pmax"`
	MarginalCost float64 `json:"MarginalCost"`
}

// Model is a thermal generator planning model
type Model struct {
	mux     *sync.Mutex
	pid     uuid.UUID
	config  Config
	results []Record
	bids    []Bid
}

// Record is one row of recorded operation stats
type Record struct {
	Generator    string
	Date         string
	Hour         int
	Horizon      int
	Power        float64
	ProdCost     float64
	TotCost      float64
	Mileage      float64
	Extra        map[string]interface{}
}

// Bid is one step of a piecewise marginal cost curve
type Bid struct {
	Power        float64
	MarginalCost float64
}

// Block is the hourly planning block built by the model
type Block struct {
	Hours        []int
	MarginalCost *expr.Param
	Pmax         *expr.Param
	Pmin         *expr.Param
	PrePower     *expr.Param
	Power        []*expr.Var
	ProdCost     []expr.Expr
	TotCost      []expr.Expr
}

// New is the Model factory function
func New(jsonConfig []byte) (Model, error) {
	config := Config{}
	err := json.Unmarshal(jsonConfig, &config)
	if err != nil {
		return Model{}, err
	}

	if config.Horizon <= 0 {
		return Model{}, fmt.Errorf("generator %v: horizon must be positive", config.Name)
	}
	if config.Pmin > config.Pmax {
		return Model{}, fmt.Errorf("generator %v: pmin exceeds pmax", config.Name)
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return Model{}, err
	}

	return Model{
		mux:    &sync.Mutex{},
		pid:    pid,
		config: config,
	}, nil
}

// PID process id
func (m Model) PID() uuid.UUID {
	return m.pid
}

// Name is a getter for the generator name
func (m Model) Name() string {
	return m.config.Name
}

// Config is a getter for the generator configuration
func (m Model) Config() Config {
	return m.config
}

// PowerOutput names the block field holding the power profile
func (m Model) PowerOutput() string {
	return "P_T"
}

// TotalCost names the block field holding the objective cost and its weight
func (m Model) TotalCost() (string, float64) {
	return "tot_cost", 1
}

// PopulateBlock builds the planning block: hourly power variables bounded by
// the generator capacity, and the production and total cost expressions.
func (m Model) PopulateBlock() *Block {
	b := &Block{}

	b.Hours = make([]int, m.config.Horizon)
	for h := range b.Hours {
		b.Hours[h] = h
	}

	b.MarginalCost = expr.NewParam("marginal_cost", m.config.MarginalCost, false)
	b.Pmax = expr.NewParam("Pmax", m.config.Pmax, false)
	b.Pmin = expr.NewParam("Pmin", m.config.Pmin, false)
	b.PrePower = expr.NewParam("pre_P_T", m.config.Pmin, true)

	b.Power = make([]*expr.Var, m.config.Horizon)
	b.ProdCost = make([]expr.Expr, m.config.Horizon)
	b.TotCost = make([]expr.Expr, m.config.Horizon)
	for _, h := range b.Hours {
		b.Power[h] = expr.NewVar(
			fmt.Sprintf("P_T[%d]", h), 0, m.config.Pmin, m.config.Pmax)
		b.ProdCost[h] = expr.Prod(b.Power[h], b.MarginalCost)
		b.TotCost[h] = b.ProdCost[h]
	}

	return b
}

// UpdateBlock rolls the block forward: the last implemented power output
// becomes the initial power of the next planning horizon.
func (m Model) UpdateBlock(b *Block, implemented []float64) error {
	if len(implemented) == 0 {
		return fmt.Errorf("generator %v: no implemented power output", m.config.Name)
	}
	return b.PrePower.Set(round2(implemented[len(implemented)-1]))
}

// ImplementedProfile returns the power outputs up to and including the last
// implemented time step.
func (m Model) ImplementedProfile(b *Block, lastStep int) ([]float64, error) {
	if lastStep < 0 || lastStep >= len(b.Power) {
		return nil, fmt.Errorf(
			"generator %v: time step %v outside horizon", m.config.Name, lastStep)
	}
	profile := make([]float64, lastStep+1)
	for t := 0; t <= lastStep; t++ {
		profile[t] = b.Power[t].Value()
	}
	return profile, nil
}

// LastDeliveredPower returns the power output at the last implemented step.
func (m Model) LastDeliveredPower(b *Block, lastStep int) (float64, error) {
	if lastStep < 0 || lastStep >= len(b.Power) {
		return 0, fmt.Errorf(
			"generator %v: time step %v outside horizon", m.config.Name, lastStep)
	}
	return b.Power[lastStep].Value(), nil
}

// RecordResults appends one row per horizon hour of operation stats. Mileage
// is the absolute power movement from the previous hour, seeded by the
// initial power parameter at hour zero.
func (m *Model) RecordResults(b *Block, date string, hour int, extra map[string]interface{}) {
	m.mux.Lock()
	defer m.mux.Unlock()

	for _, t := range b.Hours {
		var mileage float64
		if t == 0 {
			mileage = math.Abs(b.Power[t].Value() - b.PrePower.Value())
		} else {
			mileage = math.Abs(b.Power[t].Value() - b.Power[t-1].Value())
		}

		m.results = append(m.results, Record{
			Generator: m.config.Name,
			Date:      date,
			Hour:      hour,
			Horizon:   t,
			Power:     round2(b.Power[t].Value()),
			ProdCost:  round2(b.ProdCost[t].Value()),
			TotCost:   round2(b.TotCost[t].Value()),
			Mileage:   round2(mileage),
			Extra:     extra,
		})
	}
}

// Results returns a snapshot of the recorded rows
func (m *Model) Results() []Record {
	m.mux.Lock()
	defer m.mux.Unlock()
	results := make([]Record, len(m.results))
	copy(results, m.results)
	return results
}

var resultColumns = []string{
	"Generator",
	"Date",
	"Hour",
	"Horizon [hr]",
	"Thermal Power Generated [MW]",
	"Production Cost [$]",
	"Total Cost [$]",
	"Mileage [MW]",
}

// WriteResults writes the recorded operation stats to path as CSV. Extra
// columns follow the fixed columns in sorted order.
func (m *Model) WriteResults(path string) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := append([]string{}, resultColumns...)
	header = append(header, extraColumns(m.results)...)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range m.results {
		row := []string{
			r.Generator,
			r.Date,
			strconv.Itoa(r.Hour),
			strconv.Itoa(r.Horizon),
			formatFloat(r.Power),
			formatFloat(r.ProdCost),
			formatFloat(r.TotCost),
			formatFloat(r.Mileage),
		}
		for _, col := range header[len(resultColumns):] {
			row = append(row, fmt.Sprintf("%v", r.Extra[col]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()

	log.Printf("[Generator: %v] results written to %v", m.config.Name, path)
	return w.Error()
}

// DefaultBids returns a five step bid curve from Pmin to Pmax at the
// generator's marginal cost.
func (m *Model) DefaultBids() []Bid {
	if m.bids != nil {
		return m.bids
	}

	const nBids = 5
	stepLen := math.Floor((m.config.Pmax - m.config.Pmin) / nBids)

	bids := make([]Bid, 0, nBids+1)
	for idx := 0; idx < nBids; idx++ {
		bids = append(bids, Bid{
			Power:        m.config.Pmin + float64(idx)*stepLen,
			MarginalCost: m.config.MarginalCost,
		})
	}
	last := bids[len(bids)-1].Power
	if last != m.config.Pmax {
		bids = append(bids, Bid{
			Power:        m.config.Pmax,
			MarginalCost: m.config.MarginalCost,
		})
	}

	m.bids = bids
	return bids
}

func extraColumns(results []Record) []string {
	set := make(map[string]bool)
	for _, r := range results {
		for k := range r.Extra {
			set[k] = true
		}
	}
	cols := make([]string, 0, len(set))
	for k := range set {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

package generator

import (
	"encoding/json"
	"fmt"
)

// Forecaster produces flat price forecasts, one sample per scenario
type Forecaster struct {
	config ForecasterConfig
}

// ForecasterConfig differentiates one forecaster from another
type ForecasterConfig struct {
	Horizon int `json:"Horizon"`
	Samples int `json:"Samples"`
}

// NewForecaster is the Forecaster factory function
func NewForecaster(jsonConfig []byte) (Forecaster, error) {
	config := ForecasterConfig{}
	err := json.Unmarshal(jsonConfig, &config)
	if err != nil {
		return Forecaster{}, err
	}
	if config.Horizon <= 0 {
		return Forecaster{}, fmt.Errorf("forecaster horizon must be positive")
	}
	if config.Samples <= 0 {
		return Forecaster{}, fmt.Errorf("forecaster samples must be positive")
	}
	return Forecaster{config}, nil
}

// Forecast returns the prediction repeated over the horizon for each sample
func (f Forecaster) Forecast(date string, hour int, prediction float64) map[int][]float64 {
	forecast := make(map[int][]float64)
	for i := 0; i < f.config.Samples; i++ {
		sample := make([]float64, f.config.Horizon)
		for t := range sample {
			sample[t] = prediction
		}
		forecast[i] = sample
	}
	return forecast
}

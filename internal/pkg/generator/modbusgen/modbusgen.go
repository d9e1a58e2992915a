/*
modbusgen.go Modbus device controller for a thermal generator. Reads the
delivered power and breaker state from the plant RTU and writes the dispatch
power setpoint.
*/

package modbusgen

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/avercast/pse_core/internal/pkg/comm/modbuscomm"
)

// Register names expected in the device register table
const (
	regDeliveredPower = "delivered power"
	regOnline         = "online"
	regPowerSetpoint  = "power setpoint"
)

// ModbusGen target
type ModbusGen struct {
	status  MachineStatus
	control MachineControl
	comm    Comm
}

// MachineStatus is the raw device measurement set
type MachineStatus struct {
	DeliveredPower float64 `json:"DeliveredPower"`
	Online         bool    `json:"Online"`
}

// MachineControl is the raw device control set
type MachineControl struct {
	PowerSetpoint float64 `json:"PowerSetpoint"`
}

// Comm pairs the poller configuration with the device register table
type Comm struct {
	TargetConfig modbuscomm.PollerConfig `json:"Config"`
	handler      modbuscomm.ModbusComm
	Registers    []modbuscomm.Register `json:"Registers"`
}

// New returns an initialized ModbusGen device controller
func New(configPath string) (*ModbusGen, error) {
	comm, err := readCommConfig(configPath)
	if err != nil {
		return &ModbusGen{}, err
	}

	return &ModbusGen{
		status:  MachineStatus{},
		control: MachineControl{},
		comm:    comm,
	}, nil
}

func readCommConfig(path string) (Comm, error) {
	c := Comm{}
	jsonFile, err := ioutil.ReadFile(path)
	if err != nil {
		return c, err
	}

	raw := struct {
		TargetConfig modbuscomm.PollerConfig `json:"Config"`
		Registers    json.RawMessage         `json:"Registers"`
	}{}
	if err := json.Unmarshal(jsonFile, &raw); err != nil {
		return c, err
	}
	c.TargetConfig = raw.TargetConfig

	c.Registers, err = modbuscomm.LoadRegisters(raw.Registers)
	if err != nil {
		return c, err
	}

	for _, name := range []string{regDeliveredPower, regOnline, regPowerSetpoint} {
		if !hasRegister(c.Registers, name) {
			return c, fmt.Errorf("register table missing %v", name)
		}
	}

	c.handler = modbuscomm.NewPoller(c.TargetConfig)
	return c, nil
}

func hasRegister(registers []modbuscomm.Register, name string) bool {
	for _, reg := range registers {
		if reg.Name == name {
			return true
		}
	}
	return false
}

// ReadDeviceStatus requests a physical device read over the communication interface
func (a *ModbusGen) ReadDeviceStatus() (MachineStatus, error) {
	registers := modbuscomm.FilterRegisters(a.comm.Registers, modbuscomm.ReadOnly)
	response, err := a.comm.handler.Read(registers)
	if err != nil {
		return a.status, err
	}

	a.status = MachineStatus{
		DeliveredPower: response[regDeliveredPower],
		Online:         response[regOnline] != 0,
	}
	return a.status, nil
}

// WriteDeviceControl requests a physical device write over the communication interface
func (a *ModbusGen) WriteDeviceControl(c MachineControl) error {
	a.control = c
	registers := modbuscomm.FilterRegisters(a.comm.Registers, modbuscomm.WriteOnly)
	return a.comm.handler.Write(registers, map[string]float64{
		regPowerSetpoint: c.PowerSetpoint,
	})
}

// Status returns the last read device status
func (a ModbusGen) Status() MachineStatus {
	return a.status
}

package modbusgen

import (
	"testing"

	"gotest.tools/assert"

	"github.com/avercast/pse_core/internal/pkg/comm/modbuscomm"
)

type mockComm struct {
	readValues  map[string]float64
	readErr     error
	lastWritten map[string]float64
}

func (m *mockComm) Read(registers []modbuscomm.Register) (map[string]float64, error) {
	return m.readValues, m.readErr
}

func (m *mockComm) Write(registers []modbuscomm.Register, values map[string]float64) error {
	m.lastWritten = values
	return nil
}

func newTestDevice(t *testing.T, mock *mockComm) *ModbusGen {
	device, err := New("./modbusgen_test_config.json")
	assert.NilError(t, err)
	device.comm.handler = mock
	return device
}

func TestReadDeviceStatus(t *testing.T) {
	mock := &mockComm{readValues: map[string]float64{
		"delivered power": 45.5,
		"online":          1,
	}}
	device := newTestDevice(t, mock)

	status, err := device.ReadDeviceStatus()
	assert.NilError(t, err)
	assert.Equal(t, status.DeliveredPower, 45.5)
	assert.Equal(t, status.Online, true)
	assert.Equal(t, device.Status(), status)
}

func TestReadDeviceStatusOffline(t *testing.T) {
	mock := &mockComm{readValues: map[string]float64{
		"delivered power": 0,
		"online":          0,
	}}
	device := newTestDevice(t, mock)

	status, err := device.ReadDeviceStatus()
	assert.NilError(t, err)
	assert.Equal(t, status.Online, false)
}

func TestWriteDeviceControl(t *testing.T) {
	mock := &mockComm{}
	device := newTestDevice(t, mock)

	err := device.WriteDeviceControl(MachineControl{PowerSetpoint: 80.0})
	assert.NilError(t, err)
	assert.Equal(t, mock.lastWritten["power setpoint"], 80.0)
}

func TestNewMissingRegister(t *testing.T) {
	_, err := New("./modbusgen_bad_config.json")
	assert.ErrorContains(t, err, "register table missing")
}

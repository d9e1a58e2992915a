package modbuscomm

import (
	"encoding/json"
	"fmt"
)

// ModbusComm interface
type ModbusComm interface {
	Read([]Register) (map[string]float64, error)
	Write([]Register, map[string]float64) error
}

// DataType defines the type of Modbus register for encoding/decoding
type DataType string

// Constants of DataType
const (
	u16 DataType = "u16"
	u32 DataType = "u32"
	u64 DataType = "u64"
	i16 DataType = "i16"
	i32 DataType = "i32"
	i64 DataType = "i64"
	f32 DataType = "f32"
	f64 DataType = "f64"
)

// Access defines the register read/write type
type Access string

// Constants of Access
const (
	ReadOnly  Access = "read-only"
	WriteOnly Access = "write-only"
	ReadWrite Access = "read-write"
)

// Endian byte order of Modbus register for encoding/decoding
type Endian string

// Constants of Endian
const (
	littleEndian Endian = "little"
	bigEndian    Endian = "big"
)

// Register contains the data required to read and write a Modbus register.
// Scale converts the raw register value to engineering units on read and
// back on write; zero means unscaled.
type Register struct {
	Name         string   `json:"Name"`
	Address      uint16   `json:"Address"`
	DataType     DataType `json:"DataType"`
	FunctionCode int      `json:"FunctionCode"`
	AccessType   Access   `json:"Access"`
	Endianness   Endian   `json:"Endianness"`
	Scale        float64  `json:"Scale"`
}

// LoadRegisters parses and validates a JSON register table
func LoadRegisters(jsonConfig []byte) ([]Register, error) {
	registers := make([]Register, 0)
	if err := json.Unmarshal(jsonConfig, &registers); err != nil {
		return nil, err
	}
	for _, reg := range registers {
		if sizeOf(reg.DataType) == 0 {
			return nil, fmt.Errorf(
				"register %v: unknown data type %v", reg.Name, reg.DataType)
		}
		switch reg.AccessType {
		case ReadOnly, WriteOnly, ReadWrite:
		default:
			return nil, fmt.Errorf(
				"register %v: unknown access type %v", reg.Name, reg.AccessType)
		}
		switch reg.Endianness {
		case littleEndian, bigEndian:
		default:
			return nil, fmt.Errorf(
				"register %v: unknown endianness %v", reg.Name, reg.Endianness)
		}
	}
	return registers, nil
}

// FilterRegisters returns registers from array with matching access type
func FilterRegisters(r []Register, a Access) []Register {
	filtered := make([]Register, 0)
	for _, reg := range r {
		if reg.AccessType == a || reg.AccessType == ReadWrite {
			filtered = append(filtered, reg)
		}
	}
	return filtered
}

// scale converts a raw register value to engineering units
func (r Register) scale(raw float64) float64 {
	if r.Scale == 0 {
		return raw
	}
	return raw * r.Scale
}

// unscale converts engineering units back to a raw register value
func (r Register) unscale(val float64) float64 {
	if r.Scale == 0 {
		return val
	}
	return val / r.Scale
}

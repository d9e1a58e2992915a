package modbuscomm

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"gotest.tools/assert"
)

func TestEncodeU16Big(t *testing.T) {
	testReg := Register{"test", 0, u16, 3, ReadOnly, bigEndian, 0}
	var testVal float64 = 1234
	bytes := encode(testVal, testReg)
	t.Logf("float64: [%v] to U16 to big-endian []bytes: %v", testVal, bytes)

	assertBytes := [2]byte{4, 210}
	assert.Assert(t, bytes != nil)
	assert.Assert(t, len(bytes) == len(assertBytes[:]))
	for i := range bytes {
		assert.Assert(t, bytes[i] == assertBytes[i])
	}
}

func TestEncodeU16Little(t *testing.T) {
	testReg := Register{"test", 0, u16, 3, ReadOnly, littleEndian, 0}
	var testVal float64 = 1234
	bytes := encode(testVal, testReg)

	assertBytes := [2]byte{210, 4}
	assert.Assert(t, len(bytes) == len(assertBytes[:]))
	for i := range bytes {
		assert.Assert(t, bytes[i] == assertBytes[i])
	}
}

func TestDecodeU32Big(t *testing.T) {
	testReg := Register{"test", 0, u32, 3, ReadOnly, bigEndian, 0}
	assertVal := rand.Float64() * 4294967295
	testBytes := encode(assertVal, testReg)
	testVal := decode(testBytes[:], testReg)
	t.Logf("[]bytes: [%v] U32 big-endian to float64: [%v]", testBytes, testVal)

	assert.Assert(t, testVal == math.Floor(assertVal))
}

func TestDecodeI16Big(t *testing.T) {
	testReg := Register{"test", 0, i16, 3, ReadOnly, bigEndian, 0}
	assertVal := rand.Float64() * -32767
	testBytes := encode(assertVal, testReg)
	testVal := decode(testBytes[:], testReg)

	assert.Assert(t, testVal == math.Ceil(assertVal))
}

func TestDecodeI64Little(t *testing.T) {
	testReg := Register{"test", 0, i64, 3, ReadOnly, littleEndian, 0}
	assertVal := rand.Float64() * -9223372036854775807
	testBytes := encode(assertVal, testReg)
	testVal := decode(testBytes[:], testReg)

	assert.Assert(t, testVal == math.Floor(assertVal))
}

func TestEncodeF32Big(t *testing.T) {
	testReg := Register{"test", 0, f32, 3, ReadOnly, bigEndian, 0}
	var testVal float64 = -1234
	bytes := encode(testVal, testReg)

	assertBytes := [4]byte{196, 154, 64, 0}
	assert.Assert(t, len(bytes) == len(assertBytes[:]))
	for i := range bytes {
		assert.Assert(t, bytes[i] == assertBytes[i])
	}
}

func TestDecodeF64Big(t *testing.T) {
	testReg := Register{"test", 0, f64, 3, ReadOnly, bigEndian, 0}
	assertVal := rand.Float64() * -32767
	testBytes := encode(assertVal, testReg)
	testVal := decode(testBytes[:], testReg)

	assert.Assert(t, testVal == assertVal)
}

func TestLoadRegisters(t *testing.T) {
	jsonConfig := []byte(`[
		{"Name": "delivered power", "Address": 0, "DataType": "f32",
		 "FunctionCode": 4, "Access": "read-only", "Endianness": "big",
		 "Scale": 0.1},
		{"Name": "power setpoint", "Address": 2, "DataType": "u16",
		 "FunctionCode": 3, "Access": "read-write", "Endianness": "big"}
	]`)

	regs, err := LoadRegisters(jsonConfig)
	assert.NilError(t, err)
	assert.Equal(t, len(regs), 2)
	assert.Equal(t, regs[0].Name, "delivered power")
	assert.Equal(t, regs[0].DataType, f32)
	assert.Equal(t, regs[0].FunctionCode, 4)
	assert.Equal(t, regs[0].Scale, 0.1)
	assert.Equal(t, regs[1].AccessType, ReadWrite)
}

func TestLoadRegistersBadDataType(t *testing.T) {
	jsonConfig := []byte(`[
		{"Name": "bad", "Address": 0, "DataType": "u128",
		 "FunctionCode": 3, "Access": "read-only", "Endianness": "big"}
	]`)

	_, err := LoadRegisters(jsonConfig)
	assert.ErrorContains(t, err, "unknown data type")
}

func TestLoadRegistersBadAccess(t *testing.T) {
	jsonConfig := []byte(`[
		{"Name": "bad", "Address": 0, "DataType": "u16",
		 "FunctionCode": 3, "Access": "sometimes", "Endianness": "big"}
	]`)

	_, err := LoadRegisters(jsonConfig)
	assert.ErrorContains(t, err, "unknown access type")
}

func TestFilterRegisters(t *testing.T) {
	testReg1 := Register{"test1", 0, u16, 3, ReadOnly, bigEndian, 0}
	testReg2 := Register{"test2", 1, u16, 3, WriteOnly, bigEndian, 0}
	testReg3 := Register{"test3", 2, u16, 3, ReadWrite, bigEndian, 0}
	testRegs := []Register{testReg1, testReg2, testReg3}

	readable := FilterRegisters(testRegs, ReadOnly)
	assert.Equal(t, len(readable), 2)
	assert.Equal(t, readable[0].Name, "test1")
	assert.Equal(t, readable[1].Name, "test3")

	writable := FilterRegisters(testRegs, WriteOnly)
	assert.Equal(t, len(writable), 2)
	assert.Equal(t, writable[0].Name, "test2")
}

func TestRegisterScale(t *testing.T) {
	scaled := Register{"test", 0, u16, 3, ReadOnly, bigEndian, 0.1}
	assert.Equal(t, scaled.scale(100), 10.0)
	assert.Equal(t, scaled.unscale(10.0), 100.0)

	unscaled := Register{"test", 0, u16, 3, ReadOnly, bigEndian, 0}
	assert.Equal(t, unscaled.scale(100), 100.0)
	assert.Equal(t, unscaled.unscale(100), 100.0)
}

func TestFindRegisterByName(t *testing.T) {
	testReg1 := Register{"test1", 0, u16, 3, ReadOnly, bigEndian, 0}
	testReg2 := Register{"test2", 1, u32, 3, ReadOnly, bigEndian, 0}
	testReg3 := Register{"test3", 3, u64, 3, ReadOnly, bigEndian, 0}
	testRegs := []Register{testReg1, testReg2, testReg3}

	i, err := findIndexByName(testRegs, "test2")

	assert.Assert(t, err == nil)
	assert.Assert(t, testRegs[i].Name == "test2")
	assert.Assert(t, testRegs[i].Address == 1)
	assert.Assert(t, testRegs[i].DataType == u32)
}

func TestFindRegisterByNameFail(t *testing.T) {
	testRegs := []Register{{"test1", 0, u16, 3, ReadOnly, bigEndian, 0}}

	i, err := findIndexByName(testRegs, "test42")
	assert.Assert(t, err.Error() == "register name not found in register array")
	assert.Assert(t, i == -1)
}

func TestPoller(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping TestPoller in short mode")
	}

	pollerConfig := PollerConfig{"192.168.0.100", "5020", 0x01, 100, 500, true}

	reg1 := Register{"test1", 0, u16, 3, ReadWrite, bigEndian, 0}
	reg2 := Register{"test2", 1, u16, 3, ReadWrite, bigEndian, 0}
	regs := []Register{reg1, reg2}

	poller := NewPoller(pollerConfig)

	resp, err := poller.Read(regs)
	t.Logf("\nresponse: %v\n error: %v", resp, err)
	assert.Assert(t, err == nil)
}

func TestPollerFailOnTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping TestPollerFailOnTimeout in short mode")
	}

	testIP := "1.1.1.1"
	testPort := "123"

	pollerConfig := PollerConfig{testIP, testPort, 0x01, 100, 500, true}

	regs := []Register{{"test1", 0, u16, 3, ReadOnly, bigEndian, 0}}

	poller := NewPoller(pollerConfig)

	_, err := poller.Read(regs)
	assert.Assert(t, err.Error() == fmt.Sprintf("dial tcp %v:%v: i/o timeout", testIP, testPort))
}

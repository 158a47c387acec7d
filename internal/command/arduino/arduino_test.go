package arduino

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/Speshl/gorrc_pilot/internal/config"
	"github.com/Speshl/gorrc_pilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

type fakePort struct {
	bytes.Buffer
	writeErr error
	closed   bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.Buffer.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newTestDriver(t *testing.T, port *fakePort) (*CommandDriver, *serial.Mode) {
	t.Helper()
	var opened *serial.Mode
	driver := NewCommand(config.SerialConfig{Port: "/dev/ttyTEST", BaudRate: 9600}, 90).
		WithOpener(func(path string, mode *serial.Mode) (io.WriteCloser, error) {
			assert.Equal(t, "/dev/ttyTEST", path)
			opened = mode
			return port, nil
		})
	require.NoError(t, driver.Init())
	return driver, opened
}

func TestSendWritesFrames(t *testing.T) {
	port := &fakePort{}
	driver, mode := newTestDriver(t, port)
	assert.Equal(t, 9600, mode.BaudRate)

	require.NoError(t, driver.Send(models.ActuatorFrame{MotorValue: 135, SteeringValue: 90}))
	require.NoError(t, driver.Send(models.ActuatorFrame{MotorValue: 76, SteeringValue: 135}))
	assert.Equal(t, "135,90\n76,135\n", port.String())
}

func TestStopSendsNeutralThenCloses(t *testing.T) {
	port := &fakePort{}
	driver, _ := newTestDriver(t, port)

	require.NoError(t, driver.Send(models.ActuatorFrame{MotorValue: 120, SteeringValue: 60}))
	require.NoError(t, driver.Stop())
	assert.Equal(t, "120,60\n90,90\n", port.String())
	assert.True(t, port.closed)

	require.NoError(t, driver.Stop(), "second stop must be a no-op")
	err := driver.Send(models.ActuatorFrame{MotorValue: 90, SteeringValue: 90})
	assert.ErrorIs(t, err, models.ErrTransport)
}

func TestSendErrorIsTransport(t *testing.T) {
	port := &fakePort{writeErr: errors.New("device unplugged")}
	driver, _ := newTestDriver(t, port)

	err := driver.Send(models.ActuatorFrame{MotorValue: 90, SteeringValue: 90})
	assert.ErrorIs(t, err, models.ErrTransport)
	assert.ErrorContains(t, err, "device unplugged")
}

func TestInitOpenFailure(t *testing.T) {
	driver := NewCommand(config.SerialConfig{Port: "/dev/missing"}, 90).
		WithOpener(func(path string, mode *serial.Mode) (io.WriteCloser, error) {
			return nil, errors.New("no such file")
		})

	err := driver.Init()
	assert.ErrorContains(t, err, "/dev/missing")
}

func TestSerialMode(t *testing.T) {
	mode, err := SerialMode(config.SerialConfig{})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBaudRate, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)
	assert.Equal(t, serial.NoParity, mode.Parity)

	mode, err = SerialMode(config.SerialConfig{BaudRate: 115200, DataBits: 7, StopBits: 2, Parity: "even"})
	require.NoError(t, err)
	assert.Equal(t, 115200, mode.BaudRate)
	assert.Equal(t, serial.TwoStopBits, mode.StopBits)
	assert.Equal(t, serial.EvenParity, mode.Parity)

	_, err = SerialMode(config.SerialConfig{DataBits: 9})
	assert.Error(t, err)
	_, err = SerialMode(config.SerialConfig{StopBits: 3})
	assert.Error(t, err)
	_, err = SerialMode(config.SerialConfig{Parity: "mark"})
	assert.Error(t, err)

	driver := NewCommand(config.SerialConfig{Parity: "mark"}, 90)
	assert.ErrorIs(t, driver.Init(), models.ErrConfiguration)
}

package motor

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// DeadTime is the minimum delay enforced between de-energizing one channel
// and energizing the other, matching the reference GPIO adaptor's 1ms
// furi_delay_us(1000) safety gap.
const DeadTime = 1 * time.Millisecond

// GPIOConfig names the two pins driving the H-bridge (or equivalent)
// channels. Pins are active-low, matching the reference hardware: writing
// Low energizes a channel, writing High de-energizes it.
type GPIOConfig struct {
	ClockwisePin        string
	CounterClockwisePin string
	DeadTime            time.Duration
}

// GPIODriver drives two periph.io GPIO lines active-low, enforcing the
// "de-energize the outgoing channel, wait a dead-time, then energize the
// incoming one" sequencing the port requires.
type GPIODriver struct {
	mu sync.Mutex

	cwPin  gpio.PinOut
	ccwPin gpio.PinOut

	deadTime time.Duration

	cw  bool
	ccw bool

	lastErr error
}

// NewGPIODriver initializes periph.io's host drivers and resolves the
// configured pins. Both channels start de-energized.
func NewGPIODriver(cfg GPIOConfig) (*GPIODriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("motor: failed to initialize periph.io host: %w", err)
	}

	cwPin := gpioreg.ByName(cfg.ClockwisePin)
	if cwPin == nil {
		return nil, fmt.Errorf("motor: clockwise pin %q not found", cfg.ClockwisePin)
	}
	ccwPin := gpioreg.ByName(cfg.CounterClockwisePin)
	if ccwPin == nil {
		return nil, fmt.Errorf("motor: counter-clockwise pin %q not found", cfg.CounterClockwisePin)
	}

	deadTime := cfg.DeadTime
	if deadTime <= 0 {
		deadTime = DeadTime
	}

	d := &GPIODriver{cwPin: cwPin, ccwPin: ccwPin, deadTime: deadTime}
	if err := d.cwPin.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("motor: failed to de-energize clockwise pin: %w", err)
	}
	if err := d.ccwPin.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("motor: failed to de-energize counter-clockwise pin: %w", err)
	}
	return d, nil
}

func (d *GPIODriver) Clockwise(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if on {
		d.setErr(d.ccwPin.Out(gpio.High))
		d.ccw = false
		time.Sleep(d.deadTime)
		d.setErr(d.cwPin.Out(gpio.Low))
		d.cw = true
		return
	}
	d.setErr(d.cwPin.Out(gpio.High))
	d.cw = false
}

func (d *GPIODriver) CounterClockwise(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if on {
		d.setErr(d.cwPin.Out(gpio.High))
		d.cw = false
		time.Sleep(d.deadTime)
		d.setErr(d.ccwPin.Out(gpio.Low))
		d.ccw = true
		return
	}
	d.setErr(d.ccwPin.Out(gpio.High))
	d.ccw = false
}

// setErr records the most recent GPIO write failure, if any. Callers poll
// LastError between ticks to decide whether to fault the process
// interpreter; the Driver port itself stays error-free per the
// specification.
func (d *GPIODriver) setErr(err error) {
	if err != nil {
		d.lastErr = err
	}
}

// LastError returns the most recent GPIO write failure, or nil. It does not
// clear the recorded error; callers that handle it should call ClearError.
func (d *GPIODriver) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// ClearError resets the recorded fault after it has been handled.
func (d *GPIODriver) ClearError() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastErr = nil
}

func (d *GPIODriver) IsClockwise() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cw
}

func (d *GPIODriver) IsCounterClockwise() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ccw
}

func (d *GPIODriver) IsStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.cw && !d.ccw
}

package kernel

import (
	"fmt"

	"rtk/hal"
)

// DebugPin names a profiling output.
type DebugPin uint8

const (
	// DebugB0 is high while the periodic task runs.
	DebugB0 DebugPin = iota
	// DebugB1 is free for application use.
	DebugB1
	numDebugPins
)

var debugPinNames = [numDebugPins]string{"PB0", "PB1"}

func (p DebugPin) String() string {
	if p < numDebugPins {
		return debugPinNames[p]
	}
	return "PB?"
}

// DebugProfileInit configures PB0 and PB1 as low outputs.
func (k *Kernel) DebugProfileInit() error {
	g := k.h.GPIO()
	if g == nil {
		return fmt.Errorf("rtk: debug pins: %w", hal.ErrNotImplemented)
	}
	var found [numDebugPins]hal.GPIOPin
	for i := 0; i < g.PinCount(); i++ {
		p := g.Pin(i)
		if p == nil {
			continue
		}
		for j, name := range debugPinNames {
			if p.Name() == name {
				found[j] = p
			}
		}
	}
	for i, p := range found {
		if p == nil {
			return fmt.Errorf("rtk: debug pin %s: %w", debugPinNames[i], hal.ErrNotImplemented)
		}
		if err := p.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
			return err
		}
		if err := p.Write(false); err != nil {
			return err
		}
	}
	k.debug = found
	return nil
}

// DebugSet drives pin high. A no-op before DebugProfileInit.
func (k *Kernel) DebugSet(pin DebugPin) { k.debugWrite(pin, true) }

// DebugClear drives pin low.
func (k *Kernel) DebugClear(pin DebugPin) { k.debugWrite(pin, false) }

func (k *Kernel) debugWrite(pin DebugPin, level bool) {
	if pin >= numDebugPins || k.debug[pin] == nil {
		return
	}
	_ = k.debug[pin].Write(level)
}

//go:build tinygo && baremetal

package hal

import (
	"machine"
)

type tinyGoHAL struct {
	board
	logger *uartLogger
	gpio   GPIO
}

// New returns a Pico 2 (RP2350) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// Debug pins: PB0 on GP2, PB1 on GP3.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	b := newBoard(Options{ClockHz: machine.CPUFrequency()})
	b.core.hook = &interruptMask{}
	return &tinyGoHAL{
		board:  b,
		logger: &uartLogger{uart: uart},
		gpio: newVirtualGPIO([]GPIOPin{
			&machinePin{name: "PB0", pin: machine.GP2},
			&machinePin{name: "PB1", pin: machine.GP3},
		}),
	}
}

func (h *tinyGoHAL) Logger() Logger { return h.logger }
func (h *tinyGoHAL) GPIO() GPIO     { return h.gpio }

// Display has no framebuffer: the board runs without a screen.
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{} }

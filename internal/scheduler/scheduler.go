// Package scheduler drives the Game Boy's per-instruction hardware tick: the
// CPU fetch/execute step followed by advancing every other subsystem by the
// same T-cycle count, in a fixed order so that a
// DMA-in-progress half-cycle, a timer falling edge and a PPU mode transition
// all observe a consistent instruction boundary.
package scheduler

import (
	"gameboy-emulator/internal/apu"
	"gameboy-emulator/internal/cartridge"
	"gameboy-emulator/internal/cpu"
	"gameboy-emulator/internal/interrupt"
	"gameboy-emulator/internal/joypad"
	"gameboy-emulator/internal/memory"
	"gameboy-emulator/internal/ppu"
	"gameboy-emulator/internal/serial"
	"gameboy-emulator/internal/timer"
)

// dmaStepCycles is the fixed T-cycle charge the scheduler advances every
// other subsystem by while DMA holds the CPU off the bus.
const dmaStepCycles = 4

// Scheduler owns no state of its own; it coordinates the CPU and the
// peripherals already owned by the Emulator, advancing them in lockstep.
type Scheduler struct {
	CPU        *cpu.CPU
	MMU        *memory.MMU
	PPU        *ppu.PPU
	Timer      *timer.Timer
	Serial     *serial.Serial
	APU        *apu.APU
	Joypad     *joypad.Joypad
	Cartridge  cartridge.MBC
	Interrupts *interrupt.InterruptController
}

// New builds a Scheduler over an already-wired set of components.
func New(c *cpu.CPU, mmu *memory.MMU, p *ppu.PPU, jp *joypad.Joypad) *Scheduler {
	return &Scheduler{
		CPU:        c,
		MMU:        mmu,
		PPU:        p,
		Timer:      mmu.Timer(),
		Serial:     mmu.Serial(),
		APU:        mmu.APU(),
		Joypad:     jp,
		Cartridge:  mmu.Cartridge(),
		Interrupts: c.InterruptController,
	}
}

// Step executes one scheduler tick and returns the number
// of T-cycles consumed:
//
//  1. if DMA is in progress, charge a fixed 4 T-cycles to the other
//     subsystems and skip the CPU step entirely
//  2. otherwise run one CPU.Step, using its real T-cycle cost
//  3. advance the PPU by that many T-cycles
//  4. advance the timer by that many T-cycles
//  5. tick the cartridge (MBC3's RTC only; all others no-op)
//  6. advance the APU by that many T-cycles
//  7. advance serial by that many T-cycles
//
// Interrupt requests raised by any subsystem during the tick are posted to
// the shared InterruptController before Step returns.
func (s *Scheduler) Step() (uint8, error) {
	var cycles uint8

	if s.MMU.IsDMAActive() {
		cycles = dmaStepCycles
	} else {
		c, err := s.CPU.Step(s.MMU)
		if err != nil {
			return 0, err
		}
		cycles = c
	}
	s.MMU.TickDMA(uint16(cycles))

	vblank, stat := s.PPU.AdvanceCycles(cycles)
	if vblank {
		s.Interrupts.RequestInterrupt(interrupt.InterruptVBlank)
	}
	if stat {
		s.Interrupts.RequestInterrupt(interrupt.InterruptLCDStat)
	}

	s.Timer.Update(cycles)
	if s.Timer.HasTimerInterrupt() {
		s.Interrupts.RequestInterrupt(interrupt.InterruptTimer)
		s.Timer.ClearTimerInterrupt()
	}

	s.Cartridge.Tick(int(cycles))

	s.APU.Update(cycles)

	s.Serial.Update(uint16(cycles))
	if s.Serial.HasSerialInterrupt() {
		s.Interrupts.RequestInterrupt(interrupt.InterruptSerial)
		s.Serial.ClearSerialInterrupt()
	}

	if s.Joypad.HasJoypadInterrupt() {
		s.Interrupts.RequestInterrupt(interrupt.InterruptJoypad)
		s.Joypad.ClearJoypadInterrupt()
		// A latched press is what wakes a STOPped CPU.
		s.CPU.Stopped = false
	}

	return cycles, nil
}

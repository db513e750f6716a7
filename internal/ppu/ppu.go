// Package ppu implements the NES Picture Processing Unit: the beat-driven
// state machine that fetches background tiles, evaluates and fetches
// sprites, composites the two into a pixel stream, and exposes the eight
// memory-mapped registers the CPU drives it through.
package ppu

import (
	"nesppu/internal/hwio"
)

// Variant selects the timing rules a PPU instance runs under.
type Variant int

const (
	NTSC Variant = iota
	PAL
)

func (v Variant) String() string {
	if v == PAL {
		return "PAL"
	}
	return "NTSC"
}

// VBlank state machine values (§3): negative counts up toward 0 clearing
// status on entry, 0 is the resting state where the NMI line is driven
// continuously, positive raises InVBlank on entry and counts down toward 0.
const (
	vbClearing int8 = -5
	vbIdle     int8 = 0
	vbRaising  int8 = 2
)

const (
	statusOverflowBit = 5
	statusSP0HitBit   = 6
	statusVBlankBit   = 7

	sysctrlIncBit   = 2
	sysctrlSPHBit   = 3
	sysctrlBGHBit   = 4
	sysctrlSPSzBit  = 5
	sysctrlNMIBit   = 7
	dispGreyBit     = 0
	dispBGLeft8Bit  = 1
	dispSPLeft8Bit  = 2
	dispShowBGBit   = 3
	dispShowSPBit   = 4
	dispEmphShift   = 5
)

// PPU is a single NES Picture Processing Unit. Embed it by exclusive
// reference in the owning emulator and thread collaborators through
// SetVRAM/SetMapper/SetNMILine/SetHost/SetPutPixel rather than reaching
// back into a parent object.
type PPU struct {
	Variant Variant

	vram     VRAM
	mapper   Mapper
	nmi      NMILine
	host     FrameHost
	putPixel PutPixelFunc

	// Registers (§3). Stored as hwio.Reg8 so the bitfield accessors
	// (GetBit/SetBit/ClearBit) added for the generic register bank are
	// exercised by the domain logic that actually needs them, even though
	// CPU-facing reads/writes are decoded by hand in regs.go rather than
	// through hwio.Table (see DESIGN.md).
	Sysctrl  hwio.Reg8
	Dispctrl hwio.Reg8
	Status   hwio.Reg8
	OAMAddr  hwio.Reg8

	VAddr  vaddr
	Scroll vaddr
	FineX  uint8

	WriteToggle bool
	ReadBuffer  uint8

	OpenBus      uint8
	OpenBusDecay int // configurable per §9; default 77777
	openBusTimer int

	Scanline    int
	X           int
	ScanlineEnd int
	VBlankState int8
	CycleCounter uint8
	EvenOdd     bool
	cpuCycle    uint64
	Cycles      uint64

	// Background pipeline state (§3, §4.2).
	TilePat    uint16
	TileAttr   uint8
	BgShiftPat uint32
	BgShiftAttr uint32
	PatAddr    uint16
	IOAddr     uint16

	// Sprite pipeline state (§3, §4.3).
	OAM     [256]uint8
	OAM2    [8]sprite2
	OAM3    [8]sprite3
	SprTmp  uint8
	SprInPos  int
	SprOutPos int
	SprRenPos int

	// FrameBuf is the 256x240 ARGB frame the compositor writes into.
	FrameBuf [256 * 240]uint32
}

// NewPPU returns a PPU ready for SetXxx collaborator wiring, with the
// default palette wired up as the pixel resolver and the given variant's
// timing.
func NewPPU(variant Variant) *PPU {
	p := &PPU{Variant: variant}
	p.putPixel = DefaultPutPixel(DefaultPalette[:])
	p.OpenBusDecay = 77777
	p.Initialize()
	return p
}

func (p *PPU) SetVRAM(v VRAM)             { p.vram = v }
func (p *PPU) SetMapper(m Mapper)         { p.mapper = m }
func (p *PPU) SetNMILine(n NMILine)       { p.nmi = n }
func (p *PPU) SetHost(h FrameHost)        { p.host = h }
func (p *PPU) SetPutPixel(f PutPixelFunc) { p.putPixel = f }

// Initialize resets the collaborator-independent startup state. Mirrors
// the original's Initialize(): the PPU boots into vertical blank on the
// very first tick, with a full-width pre-render-like scanline.
func (p *PPU) Initialize() {
	p.Scanline = 241
	p.X = 0
	p.ScanlineEnd = 341
	p.VBlankState = vbIdle
	p.CycleCounter = 0
	p.ReadBuffer = 0
	p.OpenBus = 0
	p.openBusTimer = 0
	p.EvenOdd = false
	p.WriteToggle = false
	p.Sysctrl.Value = 0
	p.Dispctrl.Value = 0
	p.Status.Value = 0
	p.OAMAddr.Value = 0
}

// powerOnPalette is the fixed palette-RAM seed the original Power()/Reset()
// memcpy in, rather than zeroing it.
var powerOnPalette = [32]uint8{
	0x09, 0x01, 0x00, 0x01, 0x00, 0x02, 0x02, 0x0D, 0x08, 0x10, 0x08, 0x24, 0x00, 0x00, 0x04, 0x2C,
	0x09, 0x01, 0x34, 0x03, 0x00, 0x04, 0x00, 0x14, 0x08, 0x3A, 0x00, 0x02, 0x00, 0x20, 0x2C, 0x08,
}

// Power seeds state for a cold boot: palette RAM gets the fixed seed
// array (not zero), dispctrl/status are masked rather than cleared, and
// OAM is left whatever the backing array already holds (real hardware OAM
// is random on power-up; §1's Non-goals explicitly exclude emulating
// that randomness, so it is simply left at its Go zero value).
func (p *PPU) Power() {
	p.Cycles = 0
	p.Sysctrl.Value = 0
	p.Dispctrl.Value &= 0x6
	p.Status.Value &= 0x1F
	p.OAMAddr.Value = 0
	p.WriteToggle = false
	p.Scroll = 0
	p.VAddr = 0
	p.ReadBuffer = 0
	p.seedPalette()
}

// Reset mirrors Power but leaves OAMAddr and VAddr untouched, matching
// the original's narrower Reset().
func (p *PPU) Reset() {
	p.Cycles = 0
	p.Sysctrl.Value = 0
	p.Dispctrl.Value &= 0x6
	p.Status.Value &= 0x1F
	p.WriteToggle = false
	p.Scroll = 0
	p.ReadBuffer = 0
	p.seedPalette()
}

func (p *PPU) seedPalette() {
	for i, b := range powerOnPalette {
		p.vram.Write8(0x3F00+uint16(i), b)
	}
}

// Register field accessors (§3's register table), kept explicit per §9's
// design note rather than overlapping bitfields.

func (p *PPU) vramInc() uint16 {
	if p.Sysctrl.GetBit(sysctrlIncBit) {
		return 32
	}
	return 1
}

func (p *PPU) spPatternHalf() uint16 { return uint16(p.Sysctrl.GetBiti(sysctrlSPHBit)) }
func (p *PPU) bgPatternHalf() uint16 { return uint16(p.Sysctrl.GetBiti(sysctrlBGHBit)) }
func (p *PPU) spSize16() bool        { return p.Sysctrl.GetBit(sysctrlSPSzBit) }
func (p *PPU) nmiEnabled() bool      { return p.Sysctrl.GetBit(sysctrlNMIBit) }

func (p *PPU) greyscale() bool    { return p.Dispctrl.GetBit(dispGreyBit) }
func (p *PPU) showBGLeft8() bool  { return p.Dispctrl.GetBit(dispBGLeft8Bit) }
func (p *PPU) showSPLeft8() bool  { return p.Dispctrl.GetBit(dispSPLeft8Bit) }
func (p *PPU) showBG() bool       { return p.Dispctrl.GetBit(dispShowBGBit) }
func (p *PPU) showSP() bool       { return p.Dispctrl.GetBit(dispShowSPBit) }
func (p *PPU) showBGSP() bool     { return p.showBG() || p.showSP() }
func (p *PPU) emphasis() uint8    { return (p.Dispctrl.Value >> dispEmphShift) & 0x7 }

func (p *PPU) refreshOpenBus(v uint8) {
	p.OpenBus = v
	p.openBusTimer = p.openBusDecayOr77777()
}

func (p *PPU) openBusDecayOr77777() int {
	if p.OpenBusDecay > 0 {
		return p.OpenBusDecay
	}
	return 77777
}

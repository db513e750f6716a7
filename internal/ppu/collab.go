package ppu

import "nesppu/internal/hwio"

// VRAM is the PPU's view of the 14-bit video memory space (pattern tables,
// nametables, palette RAM). The collaborator is responsible for mirroring,
// pattern-bank selection and palette folding; the PPU only ever presents
// addresses already masked to 14 bits.
//
// hwio.BankIO8 already has exactly this shape, so it is reused here rather
// than declaring a parallel interface.
type VRAM = hwio.BankIO8

// Mapper lets cartridge hardware observe the beat counter, e.g. to drive
// scanline-counting IRQs (MMC3 and friends).
type Mapper interface {
	PpuTick()
}

// NMILine is the CPU's non-maskable-interrupt input. The PPU drives it
// every beat while VBlankState is at rest; it is never latched by the PPU
// itself.
type NMILine interface {
	SetNMI(asserted bool)
}

// FrameHost receives the two per-frame callbacks the PPU promises: one at
// the end of the last visible scanline, one at the start of vertical
// blank.
type FrameHost interface {
	OnRender()
	OnVerticalBlank()
}

// PutPixelFunc maps a 6-bit palette index (already combined with the
// emphasis bits in its top 3 bits) to a 24-bit RGB value. clock is the
// PPU's 3-phase sub-counter, offered for hosts that want to approximate
// NTSC composite artifacts; the default implementation ignores it.
type PutPixelFunc func(x, y int, idx6 uint8, clock uint8) uint32

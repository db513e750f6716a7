package ppu

import "nesppu/internal/emu/log"

// Read implements the CPU-facing $2000-$2007 (mirrored every 8 bytes)
// register interface (§4.5).
func (p *PPU) Read(addr uint16) uint8 {
	res := p.OpenBus
	switch addr & 7 {
	case 2:
		res = p.readStatus()
	case 4:
		res = p.readOAMData()
		p.refreshOpenBus(res)
	case 7:
		res = p.readData()
		p.refreshOpenBus(res)
	}
	return res
}

// Write implements the CPU-facing register interface (§4.5). Every write,
// regardless of port, refreshes the open-bus latch with the byte written.
func (p *PPU) Write(addr uint16, val uint8) {
	p.refreshOpenBus(val)
	switch addr & 7 {
	case 0:
		p.Sysctrl.Value = val
		// Writing the base-nametable bits silently couples them into the
		// scroll latch (§9's "port 0 write side-effect on scroll").
		p.Scroll.setNTH(val & 1)
		p.Scroll.setNTV((val >> 1) & 1)
	case 1:
		p.Dispctrl.Value = val
	case 3:
		p.OAMAddr.Value = val
	case 4:
		p.writeOAMData(val)
	case 5:
		p.writeScroll(val)
	case 6:
		p.writeVAddr(val)
	case 7:
		p.writeData(val)
	}
}

func (p *PPU) readStatus() uint8 {
	res := p.Status.Value | (p.OpenBus & 0x1F)
	p.Status.ClearBit(statusVBlankBit)
	p.WriteToggle = false
	if p.VBlankState != vbClearing {
		p.VBlankState = vbIdle
	}
	return res
}

// readOAMData masks off the unimplemented bits of a sprite's attribute
// byte (bits 2-4 always read 0 on real hardware).
func (p *PPU) readOAMData() uint8 {
	val := p.OAM[p.OAMAddr.Value]
	if p.OAMAddr.Value&3 == 2 {
		val &= 0xE3
	}
	return val
}

func (p *PPU) writeOAMData(val uint8) {
	p.OAM[p.OAMAddr.Value] = val
	p.OAMAddr.Value++
}

func (p *PPU) writeScroll(val uint8) {
	if p.WriteToggle {
		p.Scroll.setFineY(val & 7)
		p.Scroll.setCoarseY(val >> 3)
	} else {
		p.FineX = val & 7
		p.Scroll.setCoarseX(val >> 3)
	}
	p.WriteToggle = !p.WriteToggle
}

func (p *PPU) writeVAddr(val uint8) {
	if p.WriteToggle {
		p.Scroll.setLow8(val)
		p.VAddr = p.Scroll
	} else {
		p.Scroll.setHigh6(val & 0x3F)
	}
	p.WriteToggle = !p.WriteToggle
}

// readData implements the buffered VRAM read behind port 7: the byte
// returned was latched by the *previous* read, except in palette space
// where the access is effectively direct (with the buffer refilled from
// the mirrored nametable slot instead).
func (p *PPU) readData() uint8 {
	res := p.ReadBuffer
	t := p.vram.Read8(p.VAddr.raw14())
	if p.VAddr.raw14()&0x3F00 == 0x3F00 {
		res = (p.OpenBus & 0xC0) | (t & 0x3F)
		p.ReadBuffer = p.vram.Read8(p.VAddr.raw14() & 0x2FFF)
	} else {
		p.ReadBuffer = t
	}
	p.VAddr.add(p.vramInc())
	return res
}

func (p *PPU) writeData(val uint8) {
	p.vram.Write8(p.VAddr.raw14(), val)
	p.VAddr.add(p.vramInc())
}

// clampInvariant logs loudly (§7) and clamps instead of panicking: the
// PPU is a real-time component and production builds must keep running.
func clampInvariant(msg string, field string, got, max int) int {
	if got <= max {
		return got
	}
	log.ModPPU.WarnZ(msg).String("field", field).Int("got", got).Int("max", max).End()
	return max
}

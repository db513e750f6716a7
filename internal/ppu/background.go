package ppu

// tileDecodeMode reports whether beat x belongs to a background tile
// fetch window (visible columns 0-255, prefetch columns 320-335) as
// opposed to the sprite-fetch window (256-319) or the idle double
// nametable fetch at the tail of the prefetch range (336-340), which
// still runs the nametable-address half of the pipeline but must not
// push anything into the shift registers.
func tileDecodeMode(x int) bool {
	switch {
	case x <= 255:
		return true
	case x >= 320 && x <= 335:
		return true
	default:
		return false
	}
}

// renderingTick runs the background tile-fetch pipeline and the sprite
// evaluation/fetch pipeline for one beat. Both are dispatched from the
// same (x mod 8) phase counter in the original hardware, so they stay
// together here rather than being split across two independently-driven
// loops.
func (p *PPU) renderingTick() {
	decode := tileDecodeMode(p.X)

	switch p.X % 8 {
	case 2:
		// Attribute-table address, unless this beat actually belongs to
		// the sprite-fetch window, in which case the original recomputes
		// it as a (unused) nametable address instead; replicated for
		// fidelity even though nothing downstream reads it in that case.
		p.IOAddr = p.VAddr.attrAddr()
		if decode {
			break
		}
		fallthrough
	case 0:
		p.IOAddr = p.VAddr.ioaddr()
		if p.X == 0 {
			p.SprInPos, p.SprOutPos = 0, 0
			if p.showSP() {
				p.OAMAddr.Value = 0
			}
		}
		if !p.showBG() {
			break
		}
		if p.X == 304 && p.Scanline == -1 {
			p.VAddr = p.Scroll
		}
		if p.X == 256 {
			p.VAddr.setCoarseX(p.Scroll.coarseX())
			p.VAddr.setNTH(p.Scroll.ntH())
			p.SprRenPos = 0
		}

	case 1:
		if p.X == 337 && p.Scanline == -1 && p.EvenOdd && p.showBG() && p.Variant == NTSC {
			p.ScanlineEnd = 340
		}
		p.PatAddr = p.bgPatternHalf()*0x1000 + 16*uint16(p.readVRAM(p.IOAddr)) + uint16(p.VAddr.fineY())
		if !decode {
			break
		}
		p.BgShiftPat = (p.BgShiftPat >> 16) + 0x00010000*uint32(p.TilePat)
		p.BgShiftAttr = (p.BgShiftAttr >> 16) + 0x55550000*uint32(p.TileAttr)

	case 3:
		if decode {
			p.TileAttr = (p.readVRAM(p.IOAddr) >> ((p.VAddr.coarseX() & 2) + 2*(p.VAddr.coarseY()&2))) & 3
			p.VAddr.advanceX()
			if p.X == 251 {
				p.VAddr.advanceY()
			}
		} else {
			p.spriteFetchSelect()
		}

	case 5:
		p.TilePat = uint16(p.readVRAM(p.PatAddr))

	case 7:
		hi := uint16(p.readVRAM(p.PatAddr | 8))
		p.TilePat = interleave(p.TilePat | hi<<8)
		if !decode && p.SprRenPos < p.SprOutPos {
			p.OAM3[p.SprRenPos&7].pattern = p.TilePat
			p.SprRenPos++
		}
	}

	p.evaluateSprite()
}

func (p *PPU) readVRAM(addr uint16) uint8 {
	return p.vram.Read8(addr & 0x3FFF)
}

// interleave bit-shuffles a 16-bit value holding two packed 8-bit planes
// (low plane in the low byte, high plane in the high byte) into the
// alternating b7,a7,b6,a6,... order the compositor reads two bits at a
// time from: low-plane bit k lands at bit 2k and high-plane bit k at bit
// 2k+1.
func interleave(p uint16) uint16 {
	p = (p & 0xF00F) | ((p & 0x0F00) >> 4) | ((p & 0x00F0) << 4)
	p = (p & 0xC3C3) | ((p & 0x3030) >> 2) | ((p & 0x0C0C) << 2)
	p = (p & 0x9999) | ((p & 0x4444) >> 1) | ((p & 0x2222) << 1)
	return p
}

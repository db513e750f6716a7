package ppu

// renderPixel composites the background and sprite pixel for the current
// (scanline, x) and writes the result into FrameBuf (§4.4).
func (p *PPU) renderPixel() {
	edge := uint8(p.X+8) < 16 // x in [0,7] or [248,255]
	showBG := p.showBG() && (!edge || p.showBGLeft8())
	showSP := p.showSP() && (!edge || p.showSPLeft8())

	fx := uint(p.FineX)
	xpos := 15 - ((uint(p.X&7) + fx + 8*b2u(p.X&7 != 0)) & 15)

	var pixel, attr uint32
	switch {
	case showBG:
		pixel = (p.BgShiftPat >> (xpos * 2)) & 3
		if pixel != 0 {
			attr = (p.BgShiftAttr >> (xpos * 2)) & 3
		}
	case uint16(p.VAddr)&0x3F00 == 0x3F00 && !p.showBGSP():
		pixel = uint32(p.VAddr)
	}

	if showSP {
		for sno := 0; sno < p.SprRenPos; sno++ {
			s := &p.OAM3[sno]
			xdiff := uint32(p.X) - uint32(s.x)
			if xdiff >= 8 {
				continue
			}
			if s.attr&attrFlipH == 0 {
				xdiff = 7 - xdiff
			}
			spritePixel := (uint32(s.pattern) >> (xdiff * 2)) & 3
			if spritePixel == 0 {
				continue
			}
			if p.X < 255 && pixel != 0 && s.origin == 0 {
				p.Status.SetBit(statusSP0HitBit)
			}
			if s.attr&attrBehindBG == 0 || pixel == 0 {
				attr = uint32(s.attr&attrPaletteMsk) + 4
				pixel = spritePixel
			}
			break
		}
	}

	mask := uint8(0x3F)
	if p.greyscale() {
		mask = 0x30
	}
	idx := p.readPalette(attr, pixel) & mask
	idx6 := idx | p.emphasis()<<6

	rgb := p.putPixel(p.X, p.Scanline, idx6, p.CycleCounter)
	p.FrameBuf[p.Scanline*256+p.X] = 0xFF000000 | rgb
}

func (p *PPU) readPalette(attr, pixel uint32) uint8 {
	return p.readVRAM(uint16(0x3F00 + ((attr*4 + pixel) & 0x1F)))
}

func b2u(b bool) uint {
	if b {
		return 1
	}
	return 0
}

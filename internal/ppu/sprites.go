package ppu

// spriteFetchSelect runs in place of the attribute-byte fetch during the
// sprite-fetch window (beats 256-319, phase 3): it copies the next
// secondary-OAM candidate into tertiary OAM and points PatAddr at its
// pattern bytes, ready for the interleave-and-store at phase 7.
func (p *PPU) spriteFetchSelect() {
	if p.SprRenPos >= p.SprOutPos {
		return
	}
	o := p.OAM2[p.SprRenPos&7]
	p.OAM3[p.SprRenPos&7].sprite2 = o

	y := uint(p.Scanline) - uint(o.y)
	if o.attr&attrFlipV != 0 {
		if p.spSize16() {
			y ^= 15
		} else {
			y ^= 7
		}
	}

	var patAddr uint16
	if p.spSize16() {
		patAddr = 0x1000 * uint16(o.index&1)
		patAddr += 0x10 * uint16(o.index&0xFE)
	} else {
		patAddr = 0x1000 * p.spPatternHalf()
		patAddr += 0x10 * uint16(o.index)
	}
	patAddr += uint16(y&7) + uint16(y&8)*2
	p.PatAddr = patAddr
}

// evaluateSprite runs the primary-OAM scan that builds next scanline's
// secondary OAM. It is a round-robin 4-byte walk driven by OAMAddr,
// stepping on odd beats in [64,255]; every other beat it just re-reads
// the current OAM byte into SprTmp (harmless, mirrors the original's
// default case).
func (p *PPU) evaluateSprite() {
	if !(p.X >= 64 && p.X < 256 && p.X%2 == 1) {
		p.SprTmp = p.OAM[p.OAMAddr.Value]
		return
	}

	// OAMAddr advances by one on every qualifying beat, regardless of
	// which of the 4 byte-roles it's landing on; the case bodies below
	// then further adjust it (skip to next sprite, clamp) on top of that
	// baseline step, mirroring the original's `reg.OAMaddr++ & 3` switch
	// selector.
	caseSel := p.OAMAddr.Value & 3
	p.OAMAddr.Value++

	switch caseSel {
	case 0:
		p.evalByte0()
	case 1:
		if p.SprOutPos < 8 {
			p.OAM2[p.SprOutPos].index = p.SprTmp
		}
	case 2:
		if p.SprOutPos < 8 {
			p.OAM2[p.SprOutPos].attr = p.SprTmp
		}
	case 3:
		if p.SprOutPos < 8 {
			p.OAM2[p.SprOutPos].x = p.SprTmp
			p.SprOutPos++
		} else {
			p.Status.SetBit(statusOverflowBit)
		}
		if p.SprInPos == 2 {
			p.OAMAddr.Value = 8
		}
	}
}

func (p *PPU) evalByte0() {
	if p.SprInPos >= 64 {
		p.OAMAddr.Value = 0
		return
	}

	origin := p.OAMAddr.Value >> 2
	p.SprInPos++

	if p.SprOutPos < 8 {
		p.OAM2[p.SprOutPos].y = p.SprTmp
		p.OAM2[p.SprOutPos].origin = origin
	}

	height := uint16(8)
	if p.spSize16() {
		height = 16
	}
	y1 := uint16(p.SprTmp)
	y2 := y1 + height
	inRange := uint16(p.Scanline) >= y1 && uint16(p.Scanline) < y2
	if !inRange {
		if p.SprInPos != 2 {
			p.OAMAddr.Value += 3
		} else {
			p.OAMAddr.Value = 8
		}
	}
}

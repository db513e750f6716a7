package ppu

// Tick advances the PPU by the beats corresponding to one CPU cycle: 3
// for NTSC, 3 for PAL with a 4th beat added every 5th CPU cycle (this PPU
// counts its own notion of "CPU cycle" as one Tick call, since the CPU
// core is out of scope and the two are driven in strict lock-step by the
// owning emulator's loop; §5).
func (p *PPU) Tick() {
	n := 3
	if p.Variant == PAL && p.cpuCycle%5 == 4 {
		n = 4
	}
	for i := 0; i < n; i++ {
		p.beat()
	}
	p.cpuCycle++
}

func (p *PPU) beat() {
	p.serviceVBlank()

	if p.openBusTimer > 0 {
		p.openBusTimer--
		if p.openBusTimer == 0 {
			p.OpenBus = 0
		}
	}

	if p.Scanline < 240 {
		if p.showBGSP() {
			p.renderingTick()
		}
		if p.Scanline >= 0 && p.X < 256 {
			p.renderPixel()
		}
	}

	p.CycleCounter++
	if p.CycleCounter == 3 {
		p.CycleCounter = 0
	}

	// Timing hack preserved from the original: SP0hit is cleared one
	// scanline before the pre-render line, NTSC-only (§12).
	if p.Variant == NTSC && p.Scanline == 260 && p.X >= 328 && p.X <= 339 {
		p.Status.ClearBit(statusSP0HitBit)
	}

	p.advance()

	if p.mapper != nil {
		p.mapper.PpuTick()
	}
	p.Cycles++
}

func (p *PPU) serviceVBlank() {
	switch p.VBlankState {
	case vbClearing:
		p.Status.Value = 0
	case vbRaising:
		p.Status.SetBit(statusVBlankBit)
	case vbIdle:
		if p.nmi != nil {
			p.nmi.SetNMI(p.Status.GetBit(statusVBlankBit) && p.nmiEnabled())
		}
	}
	if p.VBlankState != vbIdle {
		if p.VBlankState < vbIdle {
			p.VBlankState++
		} else {
			p.VBlankState--
		}
	}
}

func (p *PPU) lastScanline() int {
	if p.Variant == PAL {
		return 311
	}
	return 261
}

func (p *PPU) advance() {
	p.X++
	if p.X != p.ScanlineEnd {
		return
	}

	if p.Scanline == 239 && p.host != nil {
		p.host.OnRender()
	}

	p.ScanlineEnd = 341
	p.X = 0
	p.Scanline++

	switch p.Scanline {
	case p.lastScanline():
		p.Scanline = -1
		p.EvenOdd = !p.EvenOdd
		p.VBlankState = vbClearing
	case 241:
		if p.host != nil {
			p.host.OnVerticalBlank()
		}
		p.VBlankState = vbRaising
	}
}

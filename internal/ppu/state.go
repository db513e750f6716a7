package ppu

import (
	"fmt"

	"github.com/go-faster/jx"
)

// SaveState serializes every field listed in §6's persisted layout: the
// palette bytes, OAM tables, address latches, register bank, open-bus
// state, and the full beat-counter position. Palette RAM itself lives in
// the vram collaborator (see collab.go), not the PPU, so it is read out
// and back in through the ordinary Read8/Write8 port rather than copied
// as a local array.
func (p *PPU) SaveState() ([]byte, error) {
	var e jx.Encoder
	e.ObjStart()

	e.FieldStart("palette")
	e.ArrStart()
	for i := uint16(0); i < 32; i++ {
		e.UInt8(p.vram.Read8(0x3F00 + i))
	}
	e.ArrEnd()

	e.FieldStart("oam")
	e.ArrStart()
	for _, b := range p.OAM {
		e.UInt8(b)
	}
	e.ArrEnd()

	e.FieldStart("oam2")
	e.ArrStart()
	for _, s := range p.OAM2 {
		encodeSprite2(&e, s)
	}
	e.ArrEnd()

	e.FieldStart("oam3")
	e.ArrStart()
	for _, s := range p.OAM3 {
		e.ObjStart()
		e.FieldStart("sprite")
		encodeSprite2(&e, s.sprite2)
		e.FieldStart("pattern")
		e.UInt16(s.pattern)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("vaddr")
	e.UInt16(uint16(p.VAddr))
	e.FieldStart("scroll")
	e.UInt16(uint16(p.Scroll))
	e.FieldStart("fine_x")
	e.UInt8(p.FineX)
	e.FieldStart("write_toggle")
	e.Bool(p.WriteToggle)

	e.FieldStart("sysctrl")
	e.UInt8(p.Sysctrl.Value)
	e.FieldStart("dispctrl")
	e.UInt8(p.Dispctrl.Value)
	e.FieldStart("status")
	e.UInt8(p.Status.Value)
	e.FieldStart("oamaddr")
	e.UInt8(p.OAMAddr.Value)
	e.FieldStart("read_buffer")
	e.UInt8(p.ReadBuffer)

	e.FieldStart("open_bus")
	e.UInt8(p.OpenBus)
	e.FieldStart("open_bus_timer")
	e.Int(p.openBusTimer)

	e.FieldStart("vblank_state")
	e.Int(int(p.VBlankState))
	e.FieldStart("scanline")
	e.Int(p.Scanline)
	e.FieldStart("x")
	e.Int(p.X)
	e.FieldStart("scanline_end")
	e.Int(p.ScanlineEnd)
	e.FieldStart("cycle_counter")
	e.UInt8(p.CycleCounter)
	e.FieldStart("even_odd")
	e.Bool(p.EvenOdd)
	e.FieldStart("cpu_cycle")
	e.UInt64(p.cpuCycle)
	e.FieldStart("cycles")
	e.UInt64(p.Cycles)

	e.FieldStart("sprinpos")
	e.Int(p.SprInPos)
	e.FieldStart("sproutpos")
	e.Int(p.SprOutPos)
	e.FieldStart("sprrenpos")
	e.Int(p.SprRenPos)
	e.FieldStart("sprtmp")
	e.UInt8(p.SprTmp)

	e.FieldStart("pat_addr")
	e.UInt16(p.PatAddr)
	e.FieldStart("ioaddr")
	e.UInt16(p.IOAddr)
	e.FieldStart("tilepat")
	e.UInt16(p.TilePat)
	e.FieldStart("tileattr")
	e.UInt8(p.TileAttr)
	e.FieldStart("bg_shift_pat")
	e.UInt32(p.BgShiftPat)
	e.FieldStart("bg_shift_attr")
	e.UInt32(p.BgShiftAttr)

	e.ObjEnd()
	return e.Bytes(), nil
}

func encodeSprite2(e *jx.Encoder, s sprite2) {
	e.ObjStart()
	e.FieldStart("y")
	e.UInt8(s.y)
	e.FieldStart("index")
	e.UInt8(s.index)
	e.FieldStart("attr")
	e.UInt8(s.attr)
	e.FieldStart("x")
	e.UInt8(s.x)
	e.FieldStart("origin")
	e.UInt8(s.origin)
	e.ObjEnd()
}

// LoadState restores state previously produced by SaveState.
func (p *PPU) LoadState(data []byte) error {
	d := jx.DecodeBytes(data)
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "palette":
			i := uint16(0)
			err = d.Arr(func(d *jx.Decoder) error {
				b, e := d.UInt8()
				if e == nil {
					p.vram.Write8(0x3F00+i, b)
					i++
				}
				return e
			})
		case "oam":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				b, e := d.UInt8()
				if e == nil && i < len(p.OAM) {
					p.OAM[i] = b
					i++
				}
				return e
			})
		case "oam2":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				if i >= len(p.OAM2) {
					return d.Skip()
				}
				s, e := decodeSprite2(d)
				p.OAM2[i] = s
				i++
				return e
			})
		case "oam3":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				if i >= len(p.OAM3) {
					return d.Skip()
				}
				e := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "sprite":
						s, e := decodeSprite2(d)
						p.OAM3[i].sprite2 = s
						return e
					case "pattern":
						v, e := d.UInt16()
						p.OAM3[i].pattern = v
						return e
					}
					return d.Skip()
				})
				i++
				return e
			})
		case "vaddr":
			v, e := d.UInt16()
			p.VAddr, err = vaddr(v), e
		case "scroll":
			v, e := d.UInt16()
			p.Scroll, err = vaddr(v), e
		case "fine_x":
			p.FineX, err = d.UInt8()
		case "write_toggle":
			p.WriteToggle, err = d.Bool()
		case "sysctrl":
			p.Sysctrl.Value, err = d.UInt8()
		case "dispctrl":
			p.Dispctrl.Value, err = d.UInt8()
		case "status":
			p.Status.Value, err = d.UInt8()
		case "oamaddr":
			p.OAMAddr.Value, err = d.UInt8()
		case "read_buffer":
			p.ReadBuffer, err = d.UInt8()
		case "open_bus":
			p.OpenBus, err = d.UInt8()
		case "open_bus_timer":
			p.openBusTimer, err = d.Int()
		case "vblank_state":
			v, e := d.Int()
			p.VBlankState, err = int8(v), e
		case "scanline":
			p.Scanline, err = d.Int()
		case "x":
			p.X, err = d.Int()
		case "scanline_end":
			p.ScanlineEnd, err = d.Int()
		case "cycle_counter":
			p.CycleCounter, err = d.UInt8()
		case "even_odd":
			p.EvenOdd, err = d.Bool()
		case "cpu_cycle":
			p.cpuCycle, err = d.UInt64()
		case "cycles":
			p.Cycles, err = d.UInt64()
		case "sprinpos":
			p.SprInPos, err = d.Int()
		case "sproutpos":
			p.SprOutPos, err = d.Int()
		case "sprrenpos":
			p.SprRenPos, err = d.Int()
		case "sprtmp":
			p.SprTmp, err = d.UInt8()
		case "pat_addr":
			p.PatAddr, err = d.UInt16()
		case "ioaddr":
			p.IOAddr, err = d.UInt16()
		case "tilepat":
			p.TilePat, err = d.UInt16()
		case "tileattr":
			p.TileAttr, err = d.UInt8()
		case "bg_shift_pat":
			p.BgShiftPat, err = d.UInt32()
		case "bg_shift_attr":
			p.BgShiftAttr, err = d.UInt32()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("ppu: decoding state field %q: %w", key, err)
		}
		return nil
	})
}

func decodeSprite2(d *jx.Decoder) (sprite2, error) {
	var s sprite2
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "y":
			s.y, err = d.UInt8()
		case "index":
			s.index, err = d.UInt8()
		case "attr":
			s.attr, err = d.UInt8()
		case "x":
			s.x, err = d.UInt8()
		case "origin":
			s.origin, err = d.UInt8()
		default:
			err = d.Skip()
		}
		return err
	})
	return s, err
}

package ppu

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

// fakeVRAM is a flat 16KB backing store standing in for the real
// nametable/pattern/palette mirroring collaborator: good enough to drive
// the PPU's own logic without pulling in a mapper.
type fakeVRAM struct {
	mem [0x4000]uint8
}

func (v *fakeVRAM) Read8(addr uint16) uint8      { return v.mem[addr&0x3FFF] }
func (v *fakeVRAM) Write8(addr uint16, val uint8) { v.mem[addr&0x3FFF] = val }

func newTestPPU() (*PPU, *fakeVRAM) {
	v := &fakeVRAM{}
	p := NewPPU(NTSC)
	p.SetVRAM(v)
	return p, v
}

func TestPowerSeedsPaletteThroughVRAM(t *testing.T) {
	p, v := newTestPPU()
	p.Power()

	for i, want := range powerOnPalette {
		if got := v.mem[0x3F00+uint16(i)]; got != want {
			t.Errorf("palette[%d] = 0x%02x, want 0x%02x", i, got, want)
		}
	}
	if p.Dispctrl.Value != 0 {
		t.Errorf("Dispctrl = 0x%02x, want 0", p.Dispctrl.Value)
	}
}

func TestReadStatusClearsVBlankAndToggle(t *testing.T) {
	p, _ := newTestPPU()
	p.Power()
	p.Status.SetBit(statusVBlankBit)
	p.WriteToggle = true

	got := p.Read(0x2002)
	if got&0x80 == 0 {
		t.Errorf("status read = 0x%02x, want VBlank bit set in the returned value", got)
	}
	if p.Status.GetBit(statusVBlankBit) {
		t.Errorf("VBlank bit still set after read")
	}
	if p.WriteToggle {
		t.Errorf("writeToggle = true, want false after status read")
	}
}

func TestScrollDoubleWrite(t *testing.T) {
	p, _ := newTestPPU()
	p.Power()

	p.Write(0x2005, 0b01111_101)
	if got := p.Scroll.coarseX(); got != 0b01111 {
		t.Errorf("Scroll.coarseX = 0b%05b, want 0b01111", got)
	}
	if p.FineX != 0b101 {
		t.Errorf("FineX = 0b%03b, want 0b101", p.FineX)
	}
	if !p.WriteToggle {
		t.Errorf("WriteToggle = false, want true after first write")
	}

	p.Write(0x2005, 0b01_011_110)
	if got := p.Scroll.coarseY(); got != 0b01011 {
		t.Errorf("Scroll.coarseY = 0b%05b, want 0b01011", got)
	}
	if got := p.Scroll.fineY(); got != 0b110 {
		t.Errorf("Scroll.fineY = 0b%03b, want 0b110", got)
	}
	if p.WriteToggle {
		t.Errorf("WriteToggle = true, want false after second write")
	}
}

func TestVAddrDoubleWriteCopiesIntoVAddr(t *testing.T) {
	p, _ := newTestPPU()
	p.Power()

	p.Write(0x2006, 0b00_111101)
	if p.WriteToggle != true {
		t.Errorf("WriteToggle = %t, want true after first $2006 write", p.WriteToggle)
	}

	p.Write(0x2006, 0b11110000)
	if p.WriteToggle != false {
		t.Errorf("WriteToggle = %t, want false after second $2006 write", p.WriteToggle)
	}
	if p.VAddr != p.Scroll {
		t.Errorf("VAddr = 0x%04x, Scroll = 0x%04x, want equal after second write", p.VAddr, p.Scroll)
	}
	want := vaddr(0b0111101_11110000)
	if p.VAddr != want {
		t.Errorf("VAddr = 0b%015b, want 0b%015b", p.VAddr, want)
	}
}

func TestPaletteMirrorWrite(t *testing.T) {
	p, v := newTestPPU()
	p.Power()

	p.VAddr = 0x3F10
	p.Write(0x2007, 0x0C)
	if got := v.mem[0x3F10]; got != 0x0C {
		t.Errorf("palette[0x10] = 0x%02x, want 0x0c", got)
	}
}

func TestBufferedDataRead(t *testing.T) {
	p, v := newTestPPU()
	p.Power()
	v.mem[0x0010] = 0xAB
	v.mem[0x0011] = 0xCD

	p.VAddr = 0x0010
	first := p.Read(0x2007) // returns stale buffer, not 0xAB yet
	if first == 0xAB {
		t.Errorf("first buffered read returned the fresh byte; want the stale buffer contents")
	}
	second := p.Read(0x2007)
	if second != 0xAB {
		t.Errorf("second buffered read = 0x%02x, want 0xab", second)
	}
}

func TestSprite0HitSetOnOverlap(t *testing.T) {
	p, v := newTestPPU()
	p.Power()
	p.Dispctrl.SetBit(dispShowBGBit)
	p.Dispctrl.SetBit(dispShowSPBit)

	p.BgShiftPat = 0xFFFFFFFF // every background pixel opaque
	p.OAM3[0] = sprite3{sprite2: sprite2{x: 10, origin: 0, attr: 0}, pattern: 0xFFFF}
	p.SprRenPos = 1
	p.X = 12
	p.Scanline = 50

	p.renderPixel()

	if !p.Status.GetBit(statusSP0HitBit) {
		t.Errorf("SP0Hit not set, want set when sprite 0 and an opaque background pixel overlap")
	}
	_ = v
}

func TestOddFrameShortensPreRenderScanline(t *testing.T) {
	p, _ := newTestPPU()
	p.Power()
	p.Dispctrl.SetBit(dispShowBGBit)
	p.Scanline = -1
	p.X = 337
	p.EvenOdd = true

	p.beat()

	if p.ScanlineEnd != 340 {
		t.Errorf("ScanlineEnd = %d, want 340 on an odd frame's pre-render line", p.ScanlineEnd)
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	p, v := newTestPPU()
	p.Power()
	p.OAM[5] = 0x42
	p.VAddr = 0x1234
	p.Scanline = 100
	p.X = 42
	p.BgShiftPat = 0xDEADBEEF
	v.mem[0x3F03] = 0x17
	p.OAM2[3] = sprite2{y: 50, index: 7, attr: 0x23, x: 80, origin: 3}
	p.OAM3[1] = sprite3{sprite2: sprite2{y: 60, index: 2, attr: 0x01, x: 16, origin: 1}, pattern: 0xBEEF}

	data, err := p.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	p2, v2 := newTestPPU()
	if err := p2.LoadState(data); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if got := v2.mem[0x3F03]; got != 0x17 {
		t.Errorf("palette[3] after round-trip = 0x%02x, want 0x17", got)
	}

	if p2.OAM[5] != 0x42 {
		t.Errorf("OAM[5] = 0x%02x, want 0x42", p2.OAM[5])
	}
	if p2.VAddr != 0x1234 {
		t.Errorf("VAddr = 0x%04x, want 0x1234", p2.VAddr)
	}
	if p2.Scanline != 100 || p2.X != 42 {
		t.Errorf("Scanline,X = %d,%d, want 100,42", p2.Scanline, p2.X)
	}
	if p2.BgShiftPat != 0xDEADBEEF {
		t.Errorf("BgShiftPat = 0x%08x, want 0xdeadbeef", p2.BgShiftPat)
	}

	cmpOpt := cmp.AllowUnexported(sprite2{}, sprite3{})
	if diff := cmp.Diff(p.OAM2, p2.OAM2, cmpOpt); diff != "" {
		t.Errorf("OAM2 mismatch after round-trip (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(p.OAM3, p2.OAM3, cmpOpt); diff != "" {
		t.Errorf("OAM3 mismatch after round-trip (-want +got):\n%s", diff)
	}
}

// TestConcurrentBeatDriversStayIndependent drives an NTSC and a PAL core
// side by side, each in its own goroutine under an errgroup.Group, and
// checks neither run interferes with the other's cycle count. The two
// cores share no state, so this is really a lifecycle/error-propagation
// exercise of errgroup rather than a test of shared-state synchronization.
func TestConcurrentBeatDriversStayIndependent(t *testing.T) {
	variants := []Variant{NTSC, PAL}
	cycles := make([]uint64, len(variants))

	var g errgroup.Group
	for i, variant := range variants {
		i, variant := i, variant
		g.Go(func() error {
			p := NewPPU(variant)
			p.SetVRAM(&fakeVRAM{})
			p.Power()
			for n := 0; n < 100_000; n++ {
				p.beat()
			}
			if p.Cycles == 0 {
				return fmt.Errorf("variant %v: beat driver never advanced Cycles", variant)
			}
			cycles[i] = p.Cycles
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if cycles[0] != 100_000 || cycles[1] != 100_000 {
		t.Errorf("cycles = %v, want both drivers to count one cycle per beat() call", cycles)
	}
}

func TestInterleavePacksPlanesAlternately(t *testing.T) {
	// Low byte (plane 0) all set, high byte (plane 1) clear: every even
	// bit of the result should be 1, every odd bit 0.
	if got := interleave(0x00FF); got != 0x5555 {
		t.Errorf("interleave(0x00ff) = 0x%04x, want 0x5555", got)
	}
	// High byte (plane 1) all set, low byte clear: the opposite pattern.
	if got := interleave(0xFF00); got != 0xAAAA {
		t.Errorf("interleave(0xff00) = 0x%04x, want 0xaaaa", got)
	}
}

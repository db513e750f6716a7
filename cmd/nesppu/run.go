package main

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"nesppu/internal/config"
	"nesppu/internal/emu/log"
	"nesppu/internal/hwio"
	"nesppu/internal/ppu"
)

const (
	screenWidth  = 256
	screenHeight = 240
)

type RunCmd struct {
	CHR    string `arg:"" name:"chr-rom" help:"Flat CHR-ROM image (pattern tables) to map at $0000-$1FFF." type:"existingfile"`
	PAL    bool   `name:"pal" help:"Run PAL timing instead of NTSC."`
	Frames int    `name:"frames" help:"Stop after N rendered frames (0 runs until the window is closed)." default:"0"`
}

// flatVRAM is a minimal VRAM collaborator built on an hwio.Table: CHR-ROM
// backs the pattern tables, a plain 2KB buffer (mirrored per the
// cartridge's usual vertical layout) backs the nametables, and a
// paletteBank backs palette RAM. It implements exactly the ppu.VRAM
// contract and nothing else, standing in for the mapper/cartridge the
// core is built without.
type flatVRAM struct {
	table *hwio.Table
}

// newFlatVRAM wires chr, the nametable mirror and the palette bank into a
// single address-dispatch table, the same InsertRange/Search path the CPU
// register bank would use if this module had one. chr must be a power-of-2
// length, matching every real CHR-ROM bank size; multi-bank CHR switching
// needs a mapper, which is out of scope here.
func newFlatVRAM(chr []byte) (*flatVRAM, error) {
	if len(chr) == 0 || len(chr)&(len(chr)-1) != 0 {
		return nil, fmt.Errorf("CHR-ROM image must be a non-empty power-of-2 size, got %d bytes", len(chr))
	}

	t := hwio.NewTable("vram")
	t.MapMemorySlice(0x0000, 0x1FFF, chr, true)
	t.MapMemorySlice(0x2000, 0x3EFF, make([]byte, 0x800), false)
	t.MapIO8(0x3F00, 0x100, &paletteBank{})
	return &flatVRAM{table: t}, nil
}

func (v *flatVRAM) Read8(addr uint16) uint8      { return v.table.Read8(addr) }
func (v *flatVRAM) Write8(addr uint16, val uint8) { v.table.Write8(addr, val) }

// paletteBank is palette RAM's $3F00-$3F1F aliasing: $3F10/$14/$18/$1C
// mirror $3F00/$04/$08/$0C. That's a bit-masking alias within the 32-byte
// space, not a contiguous range, so it can't be expressed as an hwio.Mem
// buffer and is mapped through MapIO8 instead.
type paletteBank struct {
	data [0x20]uint8
}

func (b *paletteBank) Read8(addr uint16) uint8      { return b.data[foldPalette(addr)] }
func (b *paletteBank) Write8(addr uint16, val uint8) { b.data[foldPalette(addr)] = val }

func foldPalette(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx&0x13 == 0x10 {
		idx &^= 0x10
	}
	return idx
}

// stubMapper satisfies ppu.Mapper without driving any cartridge IRQ logic.
type stubMapper struct{}

func (stubMapper) PpuTick() {}

// stubNMI discards the NMI line; there is no CPU core to deliver it to.
type stubNMI struct{}

func (stubNMI) SetNMI(bool) {}

// frameHost bridges the PPU's per-frame callbacks to the SDL texture.
type frameHost struct {
	core      *ppu.PPU
	texture   *sdl.Texture
	renderer  *sdl.Renderer
	remaining int // frames left to render; <=0 means unlimited
	done      bool
}

func (h *frameHost) OnVerticalBlank() {}

func (h *frameHost) OnRender() {
	pixels, pitch, err := h.texture.Lock(nil)
	if err != nil {
		return
	}
	copy(pixels, unsafe.Slice((*byte)(unsafe.Pointer(&h.core.FrameBuf[0])), len(h.core.FrameBuf)*4))
	_ = pitch
	h.texture.Unlock()

	h.renderer.Clear()
	h.renderer.Copy(h.texture, nil, nil)
	h.renderer.Present()

	if h.remaining > 0 {
		h.remaining--
		if h.remaining == 0 {
			h.done = true
		}
	}
}

func (cmd *RunCmd) Run() error {
	chr, err := os.ReadFile(cmd.CHR)
	if err != nil {
		return fmt.Errorf("reading CHR image: %w", err)
	}

	cfg := config.Default()
	variant := ppu.NTSC
	if cmd.PAL {
		variant = ppu.PAL
		cfg.PPU.Variant = config.PAL
	}
	log.ModEmu.InfoZ("starting PPU core").String("variant", string(cfg.PPU.Variant)).Int("open_bus_decay", cfg.PPU.OpenBusDecay).End()

	vram, err := newFlatVRAM(chr)
	if err != nil {
		return err
	}

	core := ppu.NewPPU(variant)
	core.OpenBusDecay = cfg.PPU.OpenBusDecay
	core.SetVRAM(vram)
	core.SetMapper(stubMapper{})
	core.SetNMILine(stubNMI{})
	core.Power()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("initializing SDL: %w", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("nesppu", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		screenWidth*3, screenHeight*3, sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer renderer.Destroy()
	renderer.SetLogicalSize(screenWidth, screenHeight)

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING,
		screenWidth, screenHeight)
	if err != nil {
		return fmt.Errorf("creating texture: %w", err)
	}
	defer texture.Destroy()

	host := &frameHost{core: core, texture: texture, renderer: renderer, remaining: cmd.Frames}
	core.SetHost(host)

	for !host.done {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if _, ok := event.(*sdl.QuitEvent); ok {
				return nil
			}
		}
		core.Tick()
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"nesppu/internal/ppu"
)

type StateCmd struct {
	Path string `arg:"" name:"file" help:"Save-state file to dump." type:"existingfile"`
}

// Run loads a save-state produced by ppu.PPU.SaveState and prints the
// beat-driver position it was captured at, as a quick sanity check that
// the file round-trips through the codec.
func (cmd *StateCmd) Run() error {
	data, err := os.ReadFile(cmd.Path)
	if err != nil {
		return fmt.Errorf("reading state file: %w", err)
	}

	core := ppu.NewPPU(ppu.NTSC)
	if err := core.LoadState(data); err != nil {
		return fmt.Errorf("decoding state file: %w", err)
	}

	fmt.Printf("variant:     %s\n", core.Variant)
	fmt.Printf("scanline:    %d\n", core.Scanline)
	fmt.Printf("x:           %d\n", core.X)
	fmt.Printf("cycles:      %d\n", core.Cycles)
	fmt.Printf("vaddr:       0x%04x\n", uint16(core.VAddr))
	fmt.Printf("sysctrl:     0x%02x\n", core.Sysctrl.Value)
	fmt.Printf("dispctrl:    0x%02x\n", core.Dispctrl.Value)
	fmt.Printf("status:      0x%02x\n", core.Status.Value)
	return nil
}

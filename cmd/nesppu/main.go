package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"nesppu/internal/emu/log"
)

type CLI struct {
	Run   RunCmd   `cmd:"" help:"Drive a PPU core against a memory image and display it in a window."`
	State StateCmd `cmd:"" help:"Inspect a save-state file."`

	Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
}

var vars = kong.Vars{
	"log_help": "Enable logging for specified modules.",
}

func main() {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("nesppu"),
		kong.Description("Standalone NES PPU core runner. github.com/nesppu"),
		kong.UsageOnError(),
		vars)
	if err != nil {
		fatalf("building command line parser: %v", err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fatalf("parsing command line: %v", err)
	}

	if err := ctx.Run(); err != nil {
		fatalf("%v", err)
	}
}

type logModMask log.ModuleMask

// Decode implements kong.MapperValue, mirroring the teacher's --log flag.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	val, _ := tok.Value.(string)
	for _, name := range strings.Split(val, ",") {
		mod, ok := log.ModuleByName(name)
		if !ok {
			return fmt.Errorf("unknown log module %s", name)
		}
		log.EnableDebugModules(mod.Mask())
	}
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "nesppu: "+format+"\n", args...)
	os.Exit(1)
}

// Command mips32sim loads a hex MIPS-I memory image and runs it, either
// under the line-mode shell or the bubbletea TUI debugger.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"mips32sim/cpu"
	"mips32sim/loader"
	"mips32sim/mem"
	"mips32sim/shell"
)

const (
	mainBase  = 0x0040_0000
	mainSize  = 1 << 20 // 1 MiB .text/.data region
	consoleMM = 0xFFFF_0000
)

func main() {
	tui := flag.Bool("tui", false, "start the bubbletea debugger instead of the line shell")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-tui] <image.hex>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("mips32sim: %v", err)
	}
	defer f.Close()

	bus := &mem.Bus{}
	bus.Map(mainBase, mainSize, "main")
	bus.MapConsole(consoleMM, os.Stdout)

	entry, err := loader.LoadHex(f, bus, mainBase)
	if err != nil {
		log.Fatalf("mips32sim: %v", err)
	}

	c := cpu.New(entry)

	if *tui {
		if err := shell.Debug(c, bus); err != nil {
			log.Fatalf("mips32sim: %v", err)
		}
		return
	}

	s := shell.New(c, bus, os.Stdout)
	if err := s.REPL(os.Stdin); err != nil {
		log.Fatalf("mips32sim: %v", err)
	}
}

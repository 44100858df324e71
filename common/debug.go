package common

import (
	"fmt"
	"os"
)

// DebugCommand captures a self-describing debug command.
type DebugCommand interface {
	Describe() string
	Run(m Machine, args []string)
}

type debugBlob struct {
	desc string
	f    func(Machine, []string)
}

// DebugCommands is a map of command strings to command objects.
var DebugCommands = map[string]DebugCommand{
	"r": newCommand("Dump one or all (r)egisters ('r' vs. 'r v3')", cmdRegs),
	"q": newCommand("(Q)uit the emulator", func(m Machine, _ []string) { m.Exit() }),

	"c": newCommand("(C)ontinue execution", func(m Machine, s []string) {
		*m.Debugging() = false
	}),

	"s": newCommand("(S)tep forward, run next instruction", func(m Machine, args []string) {
		if err := m.RunOp(); err != nil {
			fmt.Printf("machine fault: %v\n", err)
		}
	}),

	"b": newCommand("Set a new (b)reakpoint at the given (hex) location",
		singleHexArg("No breakpoint location specified (needs hex number)",
			"Error parsing the location", func(m Machine, loc uint16) {
				m.AddBreakpoint(loc)
				fmt.Printf("Breakpoint set at PC = %04x\n", loc)
			})),
	"m": newCommand("Print a value from (m)emory",
		singleHexArg("No memory location specified", "Error parsing location",
			func(m Machine, loc uint16) {
				mem := m.Memory()
				if int(loc) >= len(mem) {
					fmt.Printf("Location %04x is outside memory\n", loc)
					return
				}
				x := mem[loc]
				fmt.Printf("[%04x] = %02x (%d, '%c')\n", loc, x, x, rune(x))
			})),

	"i": newCommand("Disassemble the (i)nstruction at the given location, or at PC",
		singleHexArg("No PC value given", "Error parsing location",
			func(m Machine, loc uint16) {
				for i := loc; i < loc+16; {
					i += m.DisassembleOp(i)
				}
			})),

	"k": newCommand("Latch (k)ey 0-f as pressed, eg. 'k a'",
		singleHexArg("No key given (needs a hex digit 0-f)", "Error parsing key",
			func(m Machine, key uint16) {
				if key > 0xf {
					fmt.Printf("Key %x out of range (0-f)\n", key)
					return
				}
				m.KeyDown(uint8(key))
				fmt.Printf("Key %x latched\n", key)
			})),

	"sc": newCommand("Dump the (sc)reen as text", func(m Machine, _ []string) {
		DumpScreen(m, os.Stdout)
	}),

	"db": newCommand("(D)ump memory to the given file in (b)inary",
		func(m Machine, args []string) {
			if len(args) < 2 {
				fmt.Println("No filename given")
				return
			}

			f, err := os.Create(args[1])
			if err != nil {
				fmt.Printf("Could not open file: %v\n", err)
				return
			}

			f.Write(m.Memory())
			f.Close()
		}),
}

func newCommand(desc string, f func(m Machine, args []string)) DebugCommand {
	d := new(debugBlob)
	d.desc = desc
	d.f = f
	return d
}

func (dbg *debugBlob) Describe() string {
	return dbg.desc
}

func (dbg *debugBlob) Run(m Machine, args []string) {
	dbg.f(m, args)
}

// Indexed by register width in bits.
var regLines = map[int]string{
	8:  "%2s    %02x (%d)\t[%s]  %02x (%d)\n",
	16: "%2s  %04x (%d)\t[%s]  %02x (%d)\n",
}

func showReg(m Machine, name string, val uint16) {
	mem := m.Memory()
	var memval byte
	if int(val) < len(mem) {
		memval = mem[val]
	}
	fmt.Printf(regLines[m.RegisterWidth(name)], name, val, val,
		name, memval, memval)
}

func cmdRegs(m Machine, args []string) {
	if len(args) > 1 {
		for _, r := range args[1:] {
			value, name, ok := m.RegByName(r)
			if ok {
				showReg(m, name, value)
			} else {
				fmt.Printf("%% Unknown register: %s\n", r)
			}
		}
	} else {
		for _, r := range m.Registers() {
			value, name, _ := m.RegByName(r)
			showReg(m, name, value)
		}
	}
}

func singleHexArg(notSpecifiedMsg, parseErrorMsg string,
	cmd func(m Machine, arg uint16)) func(Machine, []string) {
	return func(m Machine, args []string) {
		if len(args) <= 1 {
			fmt.Println(notSpecifiedMsg)
			return
		}

		var x uint16
		_, err := fmt.Sscanf(args[1], "%x", &x)
		if err != nil {
			fmt.Printf(parseErrorMsg+": %v\n", err)
			return
		}

		cmd(m, x)
	}
}

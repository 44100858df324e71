package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bshepherdson/tc-chip8/common"
)

type command func(m common.Machine, args []string)

var cmds = map[string]command{
	"press":   cmdPress,
	"release": cmdRelease,
	"run":     cmdRun,
	"screen":  cmdScreen,
	"dump":    cmdDump,
	"quit":    cmdQuit,
}

func cmdPress(m common.Machine, args []string) {
	if len(args) < 1 {
		panic("'press' requires a hex key 0-f as an argument")
	}

	key, err := strconv.ParseUint(args[0], 16, 8)
	if err != nil || key > 0xf {
		panic("'press' requires a hex key 0-f as an argument")
	}
	m.KeyDown(uint8(key))
}

func cmdRelease(m common.Machine, args []string) {
	m.ClearKeys()
}

func cmdRun(m common.Machine, args []string) {
	if len(args) < 1 {
		panic("'run' requires an argument giving the cycle count")
	}

	cycles, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		panic("'run' requires a positive integer argument")
	}

	for i := uint64(0); i < cycles; i++ {
		if err := m.RunOp(); err != nil {
			panic(fmt.Errorf("machine fault: %v", err))
		}
	}
}

func cmdScreen(m common.Machine, args []string) {
	common.DumpScreen(m, os.Stdout)
}

func cmdDump(m common.Machine, args []string) {
	if len(args) < 1 {
		panic("'dump' requires a filename as an argument")
	}

	if err := os.WriteFile(args[0], m.Memory(), 0644); err != nil {
		panic(err)
	}
}

func cmdQuit(m common.Machine, args []string) {
	m.Exit()
}

func RunScript(m common.Machine, file string) {
	contents, err := os.ReadFile(file)
	if err != nil {
		panic(err)
	}

	lines := strings.Split(string(contents), "\n")
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}

		args := strings.Split(line, " ")
		if cmd, ok := cmds[args[0]]; ok {
			cmd(m, args[1:])
		} else {
			panic(fmt.Errorf("unknown command '%s'", args[0]))
		}
	}
}

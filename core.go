package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bshepherdson/tc-chip8/chip8"
	"github.com/bshepherdson/tc-chip8/common"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

var (
	logger      *log.Logger
	Turbo       bool
	cycleHz     int
	wavFileName string
)

var inputReader *bufio.Reader

func usage() {
	fmt.Printf("Usage: %s [options] <ROM file>\n", os.Args[0])
	flag.PrintDefaults()
}

func dumpDeviceList() {
	for name, desc := range deviceDescriptions {
		fmt.Printf("%-20s %s\n", name, desc)
	}
}

func newLogger(verbose, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if verbose {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func main() {
	deviceList := flag.String("hw", "display,keypad,beeper",
		"List of hardware devices. See -dump-hw for a list of devices.")
	dumpDevices := flag.Bool("dump-hw", false,
		"Dump a list of hardware devices and exit.")
	hz := flag.Int("hz", 500, "Machine speed in cycles per second.")
	disassemble := flag.Bool("disassemble", false, "Disassemble the ROM to stdout and exit.")
	turboFlag := flag.Bool("turbo", false, "True to start in turbo (unlimited speed) mode.")
	debugFlag := flag.Bool("debug", false, "Start in the debug console instead of running.")
	script := flag.String("script", "", "Script file to run.")
	wavFile := flag.String("wav", "chip8.wav", "Output file for the wav device.")
	stats := flag.Bool("stats", false, "Launch the runtime stats server.")
	quiet := flag.Bool("quiet", false, "Log errors only.")
	verbose := flag.Bool("verbose", false, "Log debug output.")
	showVersion := flag.Bool("version", false, "Print the version and exit.")

	flag.Parse()

	logger = newLogger(*verbose, *quiet)

	if *showVersion {
		fmt.Printf("tc-chip8 %s\n", buildinfo.Version(version, commit, date))
		return
	}

	if *dumpDevices {
		dumpDeviceList()
		return
	}

	romFile := flag.Arg(0)
	if romFile == "" {
		fmt.Printf("Missing required ROM file name!\n")
		usage()
		os.Exit(1)
	}

	rom, err := os.ReadFile(romFile)
	if err != nil {
		logger.Fatal("Failed to open ROM file", log.Err(err))
	}

	m := chip8.New()
	if err := m.LoadROM(rom); err != nil {
		logger.Fatal("Failed to load ROM", log.Err(err))
	}
	logger.Debug("ROM loaded",
		log.String("file", romFile),
		log.Int("bytes", len(rom)))

	if *disassemble {
		m.Disassemble()
		return
	}

	if *stats {
		if statsviewAvailable() {
			launchStatsview(os.Stdout)
		} else {
			logger.Error("This binary was built without statsview support")
		}
	}

	inputReader = bufio.NewReader(os.Stdin)
	wavFileName = *wavFile
	cycleHz = *hz
	Turbo = *turboFlag
	*m.Debugging() = *debugFlag

	for _, d := range strings.Split(*deviceList, ",") {
		dt, ok := deviceTypes[d]
		if !ok {
			fmt.Printf("Unknown device: %s\n", d)
			dumpDeviceList()
			os.Exit(1)
		}
		logger.Debug("Loading device", log.String("device", d))
		m.AddDevice(dt())
	}

	if *script != "" {
		RunScript(m, *script)
	}

	run(app.Context(), m)
}

func debugConsole(m common.Machine) {
	// A raw-mode terminal device would eat the console's input; switch it
	// back to canonical mode for the duration of the command.
	for _, d := range m.Devices() {
		switch t := d.(type) {
		case *Terminal:
			t.Pause()
			defer t.Resume()
		}
	}

	// Print the prompt and handle the input.
	m.DebugPrompt()
	in, err := inputReader.ReadString('\n')
	if err != nil {
		fmt.Printf("error while reading input: %v\n", err)
		return
	}

	// Try to parse in. First split on spaces.
	args := strings.Split(strings.TrimSpace(in), " ")
	if cmd, ok := common.DebugCommands[args[0]]; ok {
		cmd.Run(m, args)
	} else {
		fmt.Printf("Unknown command '%s'\n", args[0])
		fmt.Printf("Commands:\n")
		for key, dbg := range common.DebugCommands {
			fmt.Printf("%s\t%s\n", key, dbg.Describe())
		}
	}
}

func fKey(m common.Machine, key int) {
	switch key {
	case 1: // F1 - help
		fmt.Println("=== Emulator commands ===")
		fmt.Println("F1\tShow this help")
		fmt.Println("F2\tStart debugging")
		fmt.Println("F3\tResume running")
		fmt.Println("F4\tTurbo speed toggle")

	case 2: // F2 - start debugging
		*m.Debugging() = true

	case 3: // F3 - stop debugging
		*m.Debugging() = false

	case 4: // F4 - toggle turbo
		Turbo = !Turbo
		if Turbo {
			fmt.Println("Turbo enabled: speed unlimited")
		} else {
			fmt.Printf("Turbo disabled: running at %dHz\n", cycleHz)
		}
	}
}

func run(ctx context.Context, m common.Machine) {
	// Ticks at 100Hz, so run hz/100 cycles per tick.
	ticker := time.Tick(10 * time.Millisecond)
	perTick := cycleHz / 100
	if perTick < 1 {
		perTick = 1
	}
	cycles := 0

	// Repeatedly run machine cycles, stopping on a debug or a fault to show
	// the console.
	for {
		for !*m.Debugging() {
			cycles++
			if cycles >= perTick {
				select {
				case <-ctx.Done():
					fmt.Println("\nInterrupted.")
					m.Exit()
				default:
				}
				if !Turbo {
					_ = <-ticker
				}
				cycles = 0
			}

			if err := m.RunOp(); err != nil {
				logger.Error("Machine fault", log.Err(err))
				*m.Debugging() = true
			}
		}

		debugConsole(m)
	}
}

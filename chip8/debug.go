package chip8

import "strings"

var regNames = map[string]uint16{
	"v0": 0x0,
	"v1": 0x1,
	"v2": 0x2,
	"v3": 0x3,
	"v4": 0x4,
	"v5": 0x5,
	"v6": 0x6,
	"v7": 0x7,
	"v8": 0x8,
	"v9": 0x9,
	"va": 0xa,
	"vb": 0xb,
	"vc": 0xc,
	"vd": 0xd,
	"ve": 0xe,
	"vf": 0xf,
}

var registers = []string{"V0", "V1", "V2", "V3", "V4", "V5", "V6", "V7",
	"V8", "V9", "VA", "VB", "VC", "VD", "VE", "VF", "I", "DT", "ST", "SP",
	"PC"}

func (c *chip8) Registers() []string {
	return registers
}

func (c *chip8) RegByName(name string) (uint16, string, bool) {
	lower := strings.ToLower(name)
	if r, ok := regNames[lower]; ok {
		return uint16(c.v[r]), strings.ToUpper(name), true
	}

	switch lower {
	case "i":
		return c.index, "I", true
	case "dt":
		return uint16(c.delayTimer), "DT", true
	case "st":
		return uint16(c.soundTimer), "ST", true
	case "sp":
		return uint16(c.sp), "SP", true
	case "pc":
		return c.pc, "PC", true
	default:
		return 0, "", false
	}
}

// RegisterWidth reports the width in bits of a named register; the address
// registers are 16-bit, everything else 8.
func (c *chip8) RegisterWidth(name string) int {
	switch strings.ToLower(name) {
	case "i", "pc":
		return 16
	default:
		return 8
	}
}

package ops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/epaper.go/pkg/epd/proto"
)

var (
	colorNames = map[string]proto.Color{
		"black":     proto.Black,
		"dark-gray": proto.DarkGray,
		"darkgray":  proto.DarkGray,
		"gray":      proto.Gray,
		"white":     proto.White,
	}
	fontNames = map[string]proto.Font{
		"32": proto.Font32, "ascii32": proto.ASCII32, "gbk32": proto.GBK32,
		"48": proto.Font48, "ascii48": proto.ASCII48, "gbk48": proto.GBK48,
		"64": proto.Font64, "ascii64": proto.ASCII64, "gbk64": proto.GBK64,
	}
	memoryNames = map[string]proto.MemoryMode{
		"nand": proto.MemNAND,
		"tf":   proto.MemTF,
	}
	rotationNames = map[string]proto.Rotation{
		"normal": proto.RotationNormal,
		"0":      proto.RotationNormal,
		"180":    proto.Rotation180,
	}
)

func intArg(args []string, n int, name string) (int, error) {
	val, err := strconv.Atoi(args[n])
	if err != nil {
		return 0, proto.Malformed(name, fmt.Sprintf("%q is not a number", args[n]))
	}
	return val, nil
}

func intArgs(args []string, names ...string) ([]int, error) {
	vals := make([]int, len(names))
	for n, name := range names {
		val, err := intArg(args, n, name)
		if err != nil {
			return nil, err
		}
		vals[n] = val
	}
	return vals, nil
}

func namedArg[T ~byte](arg, what string, names map[string]T) (T, error) {
	if val, ok := names[strings.ToLower(arg)]; ok {
		return val, nil
	}
	return 0, proto.Malformed(what, fmt.Sprintf("unknown %s %q", what, arg))
}

// ParseColor accepts a color name or its gray level 0..3.
func ParseColor(arg string) (proto.Color, error) {
	if val, err := strconv.Atoi(arg); err == nil {
		if val < 0 || val > int(proto.White) {
			return 0, proto.InvalidParameter("color", val, int(proto.White))
		}
		return proto.Color(val), nil
	}
	return namedArg(arg, "color", colorNames)
}

// ParseFont accepts 32, 48, 64 with an optional ascii or gbk prefix.
func ParseFont(arg string) (proto.Font, error) {
	return namedArg(arg, "font", fontNames)
}

// ParseMemoryMode accepts nand or tf.
func ParseMemoryMode(arg string) (proto.MemoryMode, error) {
	return namedArg(arg, "memory", memoryNames)
}

// ParseRotation accepts normal (0) or 180.
func ParseRotation(arg string) (proto.Rotation, error) {
	return namedArg(arg, "rotation", rotationNames)
}

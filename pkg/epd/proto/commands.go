package proto

import "fmt"

// Command selects the controller operation carried by a frame.
type Command byte

// Commands understood by the controller.
const (
	CmdHandshake      Command = 0x00
	CmdSetBaud        Command = 0x01
	CmdReadBaud       Command = 0x02
	CmdMemoryMode     Command = 0x07
	CmdStopMode       Command = 0x08
	CmdUpdate         Command = 0x0A
	CmdScreenRotation Command = 0x0D
	CmdLoadFont       Command = 0x0E
	CmdLoadPicture    Command = 0x0F
	CmdSetColor       Command = 0x10
	CmdSetEnFont      Command = 0x1E
	CmdSetChFont      Command = 0x1F
	CmdDrawPixel      Command = 0x20
	CmdDrawLine       Command = 0x22
	CmdFillRect       Command = 0x24
	CmdDrawCircle     Command = 0x26
	CmdFillCircle     Command = 0x27
	CmdDrawTriangle   Command = 0x28
	CmdFillTriangle   Command = 0x29
	CmdClear          Command = 0x2E
	CmdDrawString     Command = 0x30
	CmdDrawBitmap     Command = 0x70
)

var commandNames = map[Command]string{
	CmdHandshake:      "handshake",
	CmdSetBaud:        "set-baud",
	CmdReadBaud:       "read-baud",
	CmdMemoryMode:     "memory-mode",
	CmdStopMode:       "stop-mode",
	CmdUpdate:         "update",
	CmdScreenRotation: "screen-rotation",
	CmdLoadFont:       "load-font",
	CmdLoadPicture:    "load-picture",
	CmdSetColor:       "set-color",
	CmdSetEnFont:      "set-en-font",
	CmdSetChFont:      "set-ch-font",
	CmdDrawPixel:      "draw-pixel",
	CmdDrawLine:       "draw-line",
	CmdFillRect:       "fill-rect",
	CmdDrawCircle:     "draw-circle",
	CmdFillCircle:     "fill-circle",
	CmdDrawTriangle:   "draw-triangle",
	CmdFillTriangle:   "fill-triangle",
	CmdClear:          "clear",
	CmdDrawString:     "draw-string",
	CmdDrawBitmap:     "draw-bitmap",
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("cmd(0x%02x)", byte(c))
}

// MemoryMode selects where the controller loads fonts and pictures from.
type MemoryMode byte

// Memory modes.
const (
	MemNAND MemoryMode = 0
	MemTF   MemoryMode = 1
)

// Color is one of the four gray levels of the panel.
type Color byte

// Colors.
const (
	Black    Color = 0x00
	DarkGray Color = 0x01
	Gray     Color = 0x02
	White    Color = 0x03
)

// Font selects a built-in font size.
// The same values are used by the ASCII and the GBK font commands.
type Font byte

// Fonts.
const (
	Font32 Font = 0x01
	Font48 Font = 0x02
	Font64 Font = 0x03

	ASCII32 = Font32
	ASCII48 = Font48
	ASCII64 = Font64
	GBK32   = Font32
	GBK48   = Font48
	GBK64   = Font64
)

// Rotation is the screen orientation.
type Rotation byte

// Rotations.
const (
	RotationNormal Rotation = 0
	Rotation180    Rotation = 1
)

// Package ops maps command lines like "circle 399 299 30" onto session
// operations, shared by the shell and the MQTT daemon.
package ops

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/robotalks/epaper.go/pkg/epd/proto"
	"github.com/robotalks/epaper.go/pkg/epd/session"
)

// ErrUnknownOp indicates the command line names no operation.
var ErrUnknownOp = errors.New("unknown command")

// Op is a command available to front ends.
type Op struct {
	Name    string
	Aliases []string
	// Usage lists the arguments, e.g. "X Y R".
	Usage string
	Help  string
	// MinArgs and MaxArgs bound the argument count, MaxArgs < 0 is unbounded.
	MinArgs int
	MaxArgs int
	// Run executes the op, out receives anything to be shown to the user.
	Run func(s *session.Session, args []string, out io.Writer) error
}

// CheckArgs validates the argument count.
func (o *Op) CheckArgs(args []string) error {
	if len(args) < o.MinArgs || (o.MaxArgs >= 0 && len(args) > o.MaxArgs) {
		usage := o.Name
		if o.Usage != "" {
			usage += " " + o.Usage
		}
		return proto.Malformed("args", fmt.Sprintf("usage: %s", usage))
	}
	return nil
}

func noArgs(name, help string, fn func(*session.Session) error) *Op {
	return &Op{
		Name: name,
		Help: help,
		Run: func(s *session.Session, _ []string, _ io.Writer) error {
			return fn(s)
		},
	}
}

func shortsOp(name, usage, help string, fn func(*session.Session, []int) error, aliases ...string) *Op {
	names := strings.Fields(usage)
	return &Op{
		Name:    name,
		Aliases: aliases,
		Usage:   usage,
		Help:    help,
		MinArgs: len(names),
		MaxArgs: len(names),
		Run: func(s *session.Session, args []string, _ io.Writer) error {
			vals, err := intArgs(args, names...)
			if err != nil {
				return err
			}
			return fn(s, vals)
		},
	}
}

func drawText(s *session.Session, args []string, draw func(string, int, int) error) error {
	x, y := 0, 0
	if len(args) == 3 {
		vals, err := intArgs(args[1:], "x", "y")
		if err != nil {
			return err
		}
		x, y = vals[0], vals[1]
	}
	return draw(args[0], x, y)
}

var table = []*Op{
	noArgs("handshake", "Check the controller responds", (*session.Session).Handshake),
	{
		Name:    "baud",
		Usage:   "RATE",
		Help:    "Change the controller baud rate",
		MinArgs: 1,
		MaxArgs: 1,
		Run: func(s *session.Session, args []string, _ io.Writer) error {
			rate, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil || rate == 0 {
				return proto.Malformed("rate", fmt.Sprintf("%q is not a baud rate", args[0]))
			}
			return s.SetBaud(uint32(rate))
		},
	},
	noArgs("read-baud", "Query the controller baud rate, see read", (*session.Session).ReadBaud),
	{
		Name:    "memory",
		Usage:   "nand|tf",
		Help:    "Select the storage of fonts and pictures",
		MinArgs: 1,
		MaxArgs: 1,
		Run: func(s *session.Session, args []string, _ io.Writer) error {
			mode, err := ParseMemoryMode(args[0])
			if err != nil {
				return err
			}
			return s.SetMemoryMode(mode)
		},
	},
	noArgs("stop", "Put the controller into stop mode", (*session.Session).StopMode),
	noArgs("update", "Refresh the panel", (*session.Session).Update),
	{
		Name:    "rotate",
		Usage:   "normal|180",
		Help:    "Set the screen orientation",
		MinArgs: 1,
		MaxArgs: 1,
		Run: func(s *session.Session, args []string, _ io.Writer) error {
			r, err := ParseRotation(args[0])
			if err != nil {
				return err
			}
			return s.SetRotation(r)
		},
	},
	noArgs("load-font", "Load fonts from the selected memory", (*session.Session).LoadFont),
	noArgs("load-picture", "Load pictures from the selected memory", (*session.Session).LoadPicture),
	{
		Name:    "color",
		Usage:   "FRONT BACK",
		Help:    "Set colors: black, dark-gray, gray, white",
		MinArgs: 2,
		MaxArgs: 2,
		Run: func(s *session.Session, args []string, _ io.Writer) error {
			front, err := ParseColor(args[0])
			if err != nil {
				return err
			}
			back, err := ParseColor(args[1])
			if err != nil {
				return err
			}
			return s.SetColor(front, back)
		},
	},
	{
		Name:    "font",
		Usage:   "32|48|64",
		Help:    "Select the ASCII font",
		MinArgs: 1,
		MaxArgs: 1,
		Run: func(s *session.Session, args []string, _ io.Writer) error {
			f, err := ParseFont(args[0])
			if err != nil {
				return err
			}
			return s.SetFont(f)
		},
	},
	{
		Name:    "cfont",
		Usage:   "32|48|64",
		Help:    "Select the GBK font",
		MinArgs: 1,
		MaxArgs: 1,
		Run: func(s *session.Session, args []string, _ io.Writer) error {
			f, err := ParseFont(args[0])
			if err != nil {
				return err
			}
			return s.SetChineseFont(f)
		},
	},
	shortsOp("pixel", "X Y", "Draw a point", func(s *session.Session, v []int) error {
		return s.DrawPixel(v[0], v[1])
	}),
	shortsOp("line", "X0 Y0 X1 Y1", "Draw a line", func(s *session.Session, v []int) error {
		return s.DrawLine(v[0], v[1], v[2], v[3])
	}),
	shortsOp("rect", "X0 Y0 X1 Y1", "Fill a rectangle", func(s *session.Session, v []int) error {
		return s.FillRect(v[0], v[1], v[2], v[3])
	}, "fill-rect"),
	shortsOp("circle", "X Y R", "Draw a circle", func(s *session.Session, v []int) error {
		return s.DrawCircle(v[0], v[1], v[2])
	}),
	shortsOp("fill-circle", "X Y R", "Fill a circle", func(s *session.Session, v []int) error {
		return s.FillCircle(v[0], v[1], v[2])
	}),
	shortsOp("triangle", "X0 Y0 X1 Y1 X2 Y2", "Draw a triangle", func(s *session.Session, v []int) error {
		return s.DrawTriangle(v[0], v[1], v[2], v[3], v[4], v[5])
	}),
	shortsOp("fill-triangle", "X0 Y0 X1 Y1 X2 Y2", "Fill a triangle", func(s *session.Session, v []int) error {
		return s.FillTriangle(v[0], v[1], v[2], v[3], v[4], v[5])
	}),
	noArgs("clear", "Fill the screen with the background color", (*session.Session).Clear),
	{
		Name:    "string",
		Aliases: []string{"str"},
		Usage:   "TEXT [X Y]",
		Help:    "Draw text, at 0 0 unless positioned",
		MinArgs: 1,
		MaxArgs: 3,
		Run: func(s *session.Session, args []string, _ io.Writer) error {
			if len(args) == 2 {
				return proto.Malformed("args", "both X and Y are required")
			}
			return drawText(s, args, s.DrawString)
		},
	},
	{
		Name:    "bitmap",
		Aliases: []string{"bmp"},
		Usage:   "NAME [X Y]",
		Help:    "Show a picture stored on the controller",
		MinArgs: 1,
		MaxArgs: 3,
		Run: func(s *session.Session, args []string, _ io.Writer) error {
			if len(args) == 2 {
				return proto.Malformed("args", "both X and Y are required")
			}
			return drawText(s, args, s.DrawBitmap)
		},
	},
	{
		Name:    "read",
		Help:    "Print the bytes received from the controller",
		MaxArgs: 0,
		Run: func(s *session.Session, _ []string, out io.Writer) error {
			data, err := s.ReadAll()
			if len(data) > 0 {
				fmt.Fprintf(out, "%q\n", data)
			}
			return err
		},
	},
	{
		Name:    "demo",
		Help:    "Draw the demo picture",
		MaxArgs: 0,
		Run: func(s *session.Session, _ []string, _ io.Writer) error {
			return Demo(s)
		},
	},
}

// All returns every op.
func All() []*Op {
	return table
}

// Find looks up an op by name or alias.
func Find(name string) *Op {
	for _, op := range table {
		if op.Name == name {
			return op
		}
		for _, alias := range op.Aliases {
			if alias == name {
				return op
			}
		}
	}
	return nil
}

// Exec runs a split command line, the first word names the op.
func Exec(s *session.Session, line []string, out io.Writer) error {
	if len(line) == 0 {
		return fmt.Errorf("%w: empty line", ErrUnknownOp)
	}
	op := Find(line[0])
	if op == nil {
		return fmt.Errorf("%w: %q", ErrUnknownOp, line[0])
	}
	args := line[1:]
	if err := op.CheckArgs(args); err != nil {
		return err
	}
	return op.Run(s, args, out)
}

// Demo draws nine concentric circles and a greeting.
func Demo(s *session.Session) error {
	if err := s.SetColor(proto.Black, proto.White); err != nil {
		return err
	}
	if err := s.Clear(); err != nil {
		return err
	}
	for i := 1; i < 10; i++ {
		if err := s.DrawCircle(399, 299, i*30); err != nil {
			return err
		}
	}
	if err := s.SetFont(proto.ASCII32); err != nil {
		return err
	}
	if err := s.DrawString("Simon", 0, 0); err != nil {
		return err
	}
	return s.Update()
}

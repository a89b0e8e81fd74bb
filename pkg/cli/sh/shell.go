package sh

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/epaper.go/pkg/epd"
	"github.com/robotalks/epaper.go/pkg/epd/ops"
	"github.com/robotalks/epaper.go/pkg/epd/session"
)

// Opener opens the display, epd.Open unless replaced.
type Opener func(*epd.Config) (*epd.Display, error)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	AutoOpen    bool

	Shell   *ishell.Shell
	Config  *epd.Config
	Display *epd.Display
	Open    Opener
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "
	readyPrompt  = "epd > "

	// TextX and TextY position the line entered by the text command.
	TextX = 0
	TextY = 32
)

var (
	// flags

	evalOnly   bool
	configFile string

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&TextCmd,
		&SuspendCmd,
		&ResumeCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.StringVar(&configFile, "config", configFile, "YAML config file.")
	for _, op := range ops.All() {
		AddCmds(OpCmd(op))
	}
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *epd.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
		Config:      conf,
		Open:        epd.Open,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an open display.
func MustBeOpen(fn func(c *ishell.Context, d *epd.Display)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.Display == nil {
			c.Err(fmt.Errorf("display not open"))
			return
		}
		fn(c, s.Display)
		s.dropClosed()
	}
}

// OpCmd exposes an op as a shell command.
func OpCmd(op *ops.Op) *ishell.Cmd {
	help := op.Help
	if op.Usage != "" {
		help = op.Usage + ": " + help
	}
	return &ishell.Cmd{
		Name:    op.Name,
		Aliases: op.Aliases,
		Help:    help,
		Func: MustBeOpen(func(c *ishell.Context, d *epd.Display) {
			if err := op.CheckArgs(c.Args); err != nil {
				c.Err(err)
				return
			}
			var out bytes.Buffer
			err := d.Do(func(s *session.Session) error {
				return op.Run(s, c.Args, &out)
			})
			if out.Len() > 0 {
				c.Print(out.String())
			}
			if err != nil {
				c.Err(err)
			}
		}),
	}
}

// OpenDisplay opens the display if it isn't.
func (s *Shell) OpenDisplay() error {
	s.dropClosed()
	if s.Display != nil {
		return nil
	}
	d, err := s.Open(s.Config)
	if err != nil {
		return err
	}
	s.Display = d
	s.Shell.SetPrompt(readyPrompt)
	return nil
}

// CloseDisplay tears down the display.
func (s *Shell) CloseDisplay() error {
	if s.Display == nil {
		return nil
	}
	err := s.Display.Close()
	s.Display = nil
	s.Shell.SetPrompt(closedPrompt)
	return err
}

// dropClosed forgets a display closed after a failed write.
func (s *Shell) dropClosed() {
	if s.Display != nil && s.Display.State() == epd.Closed {
		s.Display = nil
		s.Shell.SetPrompt(closedPrompt)
	}
}

// DrawText draws a line of text at TextX, TextY and updates the panel.
func DrawText(d *epd.Display, text string) error {
	return d.Do(func(s *session.Session) error {
		if err := s.DrawString(text, TextX, TextY); err != nil {
			return err
		}
		return s.Update()
	})
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoOpen {
		if err := s.OpenDisplay(); err != nil {
			log.Fatalf("open display failed: %v", err)
		}
	}
	defer func() {
		if err := s.CloseDisplay(); err != nil {
			log.Printf("close display: %v", err)
		}
	}()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Println(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Println("command expected")
}

var (
	// OpenCmd opens the display.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "Wake up the controller and handshake",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).OpenDisplay(); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the display.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "Close the port and release the pins",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).CloseDisplay(); err != nil {
				c.Err(err)
			}
		},
	}

	// TextCmd prompts for a line and draws it below the first line.
	TextCmd = ishell.Cmd{
		Name: "text",
		Help: "[TEXT]: Draw a line of text at 0 32 and update, prompts when TEXT is absent",
		Func: MustBeOpen(func(c *ishell.Context, d *epd.Display) {
			text := strings.Join(c.Args, " ")
			if len(c.Args) == 0 {
				c.ShowPrompt(false)
				c.Print("> ")
				text = c.ReadLine()
				c.ShowPrompt(true)
			}
			if err := DrawText(d, text); err != nil {
				c.Err(err)
			}
		}),
	}

	// SuspendCmd puts the controller into stop mode.
	SuspendCmd = ishell.Cmd{
		Name: "suspend",
		Help: "Put the controller into stop mode",
		Func: MustBeOpen(func(c *ishell.Context, d *epd.Display) {
			if err := d.Suspend(); err != nil {
				c.Err(err)
			}
		}),
	}

	// ResumeCmd wakes the controller from stop mode.
	ResumeCmd = ishell.Cmd{
		Name: "resume",
		Help: "Wake the controller from stop mode",
		Func: MustBeOpen(func(c *ishell.Context, d *epd.Display) {
			if err := d.Resume(); err != nil {
				c.Err(err)
			}
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := epd.NewConfig()
	if configFile != "" {
		var err error
		if conf, err = epd.Load(configFile); err != nil {
			log.Fatalln(err)
		}
	}
	s := New(conf)
	s.AutoOpen = true
	s.Run(flag.Args()...)
}

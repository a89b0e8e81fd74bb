package main

import (
	"github.com/robotalks/epaper.go/pkg/cli/sh"
	"github.com/robotalks/epaper.go/pkg/epd"
)

//go-build: CGO_ENABLED=0

func init() {
	epd.SetupFlags()
}

func main() {
	sh.Main()
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/Andreluss/BlackLady-Network-Game/internal/game"
	"github.com/Andreluss/BlackLady-Network-Game/internal/server"
)

var CLI struct {
	Port    int    `short:"p" help:"Port to listen on (0 picks an ephemeral port)"`
	File    string `short:"f" help:"Path to the deal file"`
	Timeout *int   `short:"t" help:"Response timeout in seconds"`
	Config  string `short:"c" help:"Path to an optional HCL configuration file"`
	Debug   bool   `short:"d" help:"Enable debug logging and the wire trace"`
}

func main() {
	ctx := kong.Parse(&CLI)

	port := CLI.Port
	timeoutSeconds := CLI.Timeout
	dealFile := CLI.File
	debug := CLI.Debug

	if CLI.Config != "" {
		fileCfg, err := server.LoadFileConfig(CLI.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			ctx.Exit(1)
		}
		if port == 0 {
			port = fileCfg.Server.Port
		}
		if timeoutSeconds == nil && fileCfg.Server.TimeoutSeconds != 0 {
			timeoutSeconds = &fileCfg.Server.TimeoutSeconds
		}
		if dealFile == "" {
			dealFile = fileCfg.Server.DealFile
		}
		debug = debug || fileCfg.Server.Debug
	}
	if dealFile == "" {
		fmt.Fprintln(os.Stderr, "A deal file is required (-f)")
		ctx.Exit(1)
	}
	// An explicit -t value, including an invalid one, is taken at face
	// value; the default kicks in only when the flag is absent everywhere.
	timeout := server.DefaultTimeout
	if timeoutSeconds != nil {
		timeout = time.Duration(*timeoutSeconds) * time.Second
	}

	logger := log.New(os.Stderr)
	if debug {
		logger.SetLevel(log.DebugLevel)
	}

	deals, err := game.LoadDeals(dealFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading deal file: %v\n", err)
		ctx.Exit(1)
	}

	cfg := server.Config{
		Port:    port,
		Timeout: timeout,
		Deals:   deals,
	}
	if debug {
		cfg.Trace = os.Stdout
	}

	s, err := server.New(cfg, logger, quartz.NewReal())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting server: %v\n", err)
		ctx.Exit(1)
	}

	if err := s.Run(); err != nil {
		logger.Error("server failed", "error", err)
		ctx.Exit(1)
	}
}

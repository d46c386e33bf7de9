// Package cmd wires the router up to a cobra CLI, mirroring fw/cmd/cmd.go
// in the teacher repo: a single root command taking one config-file argument,
// with graceful shutdown on SIGINT/SIGTERM.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ndn-tools/nrd/internal/core"
	"github.com/ndn-tools/nrd/internal/corelog"
	"github.com/ndn-tools/nrd/internal/router"
	"github.com/spf13/cobra"
)

// Root is the router's root command, mirroring CmdYaNFD.
var Root = &cobra.Command{
	Use:   "nrd CONFIG-FILE",
	Short: "A small single-threaded Named Data Networking forwarder",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := core.LoadConfig(args[0])
	if err != nil {
		return err
	}

	if lvl, err := corelog.ParseLevel(cfg.LogLevel); err == nil {
		corelog.SetLevel(lvl)
	}

	r, err := router.New(cfg)
	if err != nil {
		return fmt.Errorf("cmd: constructing router: %w", err)
	}
	if err := r.Start(cfg); err != nil {
		return fmt.Errorf("cmd: starting router: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	corelog.Info(cmdSubject{}, "Received signal, shutting down", "signal", sig)

	core.RequestQuit()
	r.Stop()
	return nil
}

type cmdSubject struct{}

func (cmdSubject) String() string { return "nrd" }

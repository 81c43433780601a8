package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/wardwatch/internal/config"
	"github.com/agenthands/wardwatch/internal/ingest"
)

const (
	exitOK        = 0
	exitError     = 1
	exitMalformed = 2
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "wardwatch",
		Short:         "Detect ward contacts between positive-culture patients and group them into clusters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			// CONFIG_PATH may come from .env, so it is read only after loading it.
			if !cmd.Flags().Changed("config") {
				opts.configPath = config.Path()
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config TOML (default $CONFIG_PATH or "+config.DefaultPath+")")

	cmd.AddCommand(newClusterCmd(&opts))
	cmd.AddCommand(newExportCmd(&opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case ingest.IsMalformed(err):
		return exitMalformed
	default:
		return exitError
	}
}

var errNoInput = errors.New("both --transfers and --micro are required")

package main

import (
	"context"
	"errors"
	"io"

	"github.com/chazu/gemcut/internal/config"
	"github.com/chazu/gemcut/internal/logger"
	"github.com/spf13/cobra"
)

// app is the state shared by all subcommands once the root command has
// loaded configuration.
type app struct {
	flags config.Flags
	cfg   *config.Config
	rt    *services
}

// execute runs the command line in args and releases whatever the command
// opened, whether or not it succeeded.
func execute(ctx context.Context, args []string, stdout io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)

	err := root.ExecuteContext(ctx)
	logger.Sync()
	if a.rt != nil {
		err = errors.Join(err, a.rt.Close())
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "gemcut",
		Short:         "Cut faceted gemstone solids from GemCad descriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.flags.ConfigPath, &a.flags)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
				return err
			}
			a.cfg = cfg
			a.rt = newServices(cfg, logger.Log)
			return nil
		},
	}
	a.flags.Register(root.PersistentFlags())

	root.AddCommand(
		newBuildCmd(a),
		newInfoCmd(a),
		newPrebuildCmd(a),
		newScriptCmd(a),
		newCacheCmd(a),
	)
	return root
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/gemcut/pkg/engine"
	"github.com/chazu/gemcut/pkg/gemcad"
	"github.com/spf13/cobra"
)

func newScriptCmd(a *app) *cobra.Command {
	var (
		out    string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "script <file>",
		Short: "Evaluate a cut script and build the cut it describes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cut, evalErrs, err := engine.NewEngine().Evaluate(string(src))
			if err != nil {
				return err
			}
			if len(evalErrs) > 0 {
				msgs := make([]string, len(evalErrs))
				for i, e := range evalErrs {
					msgs[i] = e.Error()
				}
				return fmt.Errorf("%s: %s", args[0], strings.Join(msgs, "; "))
			}
			if cut.Name == gemcad.DefaultName {
				cut.Name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			if dryRun {
				printCut(cmd.OutOrStdout(), cut, nil, nil)
				return nil
			}

			f, err := a.rt.forge()
			if err != nil {
				return err
			}
			res, err := f.BuildCut(cmd.Context(), cut)
			if err != nil {
				return err
			}
			res.CutID = args[0]
			if out != "" {
				if err := writeMesh(out, res.Mesh, cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				if out == "-" {
					return nil
				}
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the mesh to this file (.stl, .bin, or - for stdout)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the evaluated cut without building it")
	return cmd
}

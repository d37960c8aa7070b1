package main

import (
	"fmt"
	"os"

	"github.com/chazu/gemcut/pkg/forge"
	"github.com/chazu/gemcut/pkg/geocache"
	"github.com/spf13/cobra"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		out      string
		slot     int
		fallback bool
	)
	cmd := &cobra.Command{
		Use:   "build <cut-id | file.asc>",
		Short: "Build the mesh for one cut",
		Long: `Build the mesh for one cut and print a summary.

A cut identifier is fetched from the configured source and cached under
--slot; a path to a .asc file is read and built directly. With -o the mesh
is written as binary STL, or as a cache payload when the name ends in .bin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.rt.forge()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var res *forge.Result
			switch {
			case isFilePath(args[0]):
				text, rerr := os.ReadFile(args[0])
				if rerr != nil {
					return rerr
				}
				res, err = f.BuildText(ctx, string(text))
				if res != nil {
					res.CutID = args[0]
				}
			case fallback:
				res, err = f.LoadOrFallback(ctx, slot, args[0])
			default:
				res, err = f.Load(ctx, slot, args[0])
			}
			if err != nil {
				return err
			}

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
	cmd.Flags().IntVar(&slot, "slot", geocache.NoSlot, "persistent cache slot")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "build the standard brilliant when the cut cannot be fetched")
	return cmd
}

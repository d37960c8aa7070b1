package main

import (
	"errors"
	"fmt"

	"github.com/chazu/gemcut/pkg/forge"
	"github.com/chazu/gemcut/pkg/source"
	"github.com/spf13/cobra"
)

func newPrebuildCmd(a *app) *cobra.Command {
	var (
		index  string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "prebuild [cut-id...]",
		Short: "Build and store meshes for many cuts",
		Long: `Build every listed cut and write <out>/<id>.bin. Cuts whose output
already exists are skipped. Identifiers come from the arguments, from
--index (a JSON array), or from every .asc file in the source directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := prebuildIDs(a, args, index)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = a.cfg.Prebuild.OutDir
			}

			b, err := a.rt.builder()
			if err != nil {
				return err
			}
			// Prebuild writes its own files; the slot cache is not involved.
			f := &forge.Forge{
				Fetcher: a.rt.fetcher(),
				Builder: b,
				Scale:   a.cfg.Engine.Scale,
				Logger:  a.rt.log.Named("prebuild"),
			}
			st, err := f.Prebuild(cmd.Context(), ids, outDir, a.cfg.Prebuild.Workers)
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d, skipped %d, failed %d\n", st.Processed, st.Skipped, st.Failed)
			return err
		},
	}
	cmd.Flags().StringVar(&index, "index", "", "JSON file listing cut identifiers")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default from config)")
	return cmd
}

func prebuildIDs(a *app, args []string, index string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if index != "" {
		return forge.ReadIndex(index)
	}
	if a.cfg.Source.BaseURL != "" {
		return nil, errors.New("prebuild from a URL source needs cut identifiers or --index")
	}
	ids, err := source.DirFetcher{Root: a.cfg.Source.Dir}.List()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no descriptions found in %s", a.cfg.Source.Dir)
	}
	return ids, nil
}

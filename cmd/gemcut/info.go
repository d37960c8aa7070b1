package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/chazu/gemcut/pkg/gemcad"
	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <cut-id | file.asc>",
		Short: "Parse and validate a cut description without building it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if isFilePath(args[0]) {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				text = string(data)
			} else {
				t, err := a.rt.fetcher().Fetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				text = t
			}

			cut, issues := gemcad.Parse(text)
			findings := gemcad.Validate(cut)
			printCut(cmd.OutOrStdout(), cut, issues, findings)
			if gemcad.HasErrors(findings) {
				return fmt.Errorf("%s is not buildable", args[0])
			}
			return nil
		},
	}
}

func printCut(w io.Writer, cut *gemcad.Cut, issues []gemcad.ParseIssue, findings []gemcad.ValidationIssue) {
	fmt.Fprintf(w, "name:        %s\n", cut.Name)
	fmt.Fprintf(w, "gear:        %d\n", cut.GearTeeth)
	fmt.Fprintf(w, "symmetry:    %d\n", cut.Symmetry)
	fmt.Fprintf(w, "ri:          %g\n", cut.RefractiveIndex)
	fmt.Fprintf(w, "facets:      %d (%d cuts)\n", len(cut.Facets), cut.CutCount())
	fmt.Fprintf(w, "max dist:    %g\n", cut.MaxDistance())

	if len(cut.Facets) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\nNAME\tANGLE\tDISTANCE\tINDICES")
		for _, f := range cut.Facets {
			fmt.Fprintf(tw, "%s\t%g\t%g\t%v\n", f.Name, f.Angle, f.Distance, f.Indices)
		}
		tw.Flush()
	}

	for _, is := range issues {
		fmt.Fprintf(w, "skipped: %v\n", is)
	}
	for _, v := range findings {
		fmt.Fprintln(w, v.Error())
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/gemcut/pkg/forge"
	"github.com/chazu/gemcut/pkg/geocache"
	"github.com/chazu/gemcut/pkg/kernel"
	"github.com/chazu/gemcut/pkg/meshcodec"
	"github.com/chazu/gemcut/pkg/stl"
)

// writeMesh writes m to path: cache payload for .bin, binary STL
// otherwise. "-" writes STL to stdout.
func writeMesh(path string, m *kernel.Mesh, stdout io.Writer) error {
	header := "gemcut " + m.PartName
	if path == "-" {
		return stl.WriteBinary(stdout, m, header)
	}

	if strings.EqualFold(filepath.Ext(path), ".bin") {
		data, err := meshcodec.Encode(m)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := stl.WriteBinary(f, m, header); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printResult(w io.Writer, res *forge.Result) {
	fmt.Fprintf(w, "cut:        %s\n", res.CutID)
	if res.Cut != nil {
		fmt.Fprintf(w, "name:       %s\n", res.Cut.Name)
	}
	fmt.Fprintf(w, "triangles:  %d\n", res.Mesh.TriangleCount())
	min, max := res.Mesh.Bounds()
	fmt.Fprintf(w, "bounds:     %v - %v\n", min, max)
	if res.Tier != geocache.TierNone {
		fmt.Fprintf(w, "cache tier: %s\n", res.Tier)
	}
	if res.Fallback {
		fmt.Fprintln(w, "fallback:   standard brilliant")
	}
	if res.Report != nil {
		fmt.Fprintf(w, "steps:      %d applied of %d\n", res.Report.Applied, res.Report.Steps)
		for _, f := range res.Report.Failures {
			fmt.Fprintf(w, "  failed:   %v\n", f)
		}
		fmt.Fprintf(w, "elapsed:    %s\n", res.Elapsed)
	}
}

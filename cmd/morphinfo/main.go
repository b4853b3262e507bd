// morphinfo inspects the morph targets of glTF heads and blendshape clips.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/Faultbox/cartoonhead/internal/assets"
	"github.com/Faultbox/cartoonhead/internal/morph"
	"github.com/Faultbox/cartoonhead/internal/tracking/clip"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "targets", "ls":
		err = cmdTargets(os.Stdout, args)
	case "deltas":
		err = cmdDeltas(os.Stdout, args)
	case "clip":
		err = cmdClip(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`morphinfo - morph target inspector

Usage:
  morphinfo <command> [options]

Commands:
  info [-max N] <head.glb>    Show the resolved morph mesh and texture layout
  targets <head.glb>          List target names in index order
  deltas [-max N] <head.glb>  Show the largest delta of every target
  clip <clip.yaml>            Validate a blendshape clip

Examples:
  morphinfo info raccoon_head.glb
  morphinfo info -max 2048 raccoon_head.glb
  morphinfo targets - < raccoon_head.glb
  morphinfo clip smile.yaml`)
}

func loadInfo(name string, args []string) (*assets.Asset, *morph.TargetInfo, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	maxSize := fs.Int("max", 4096, "Maximum texture dimension")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() < 1 {
		return nil, nil, fmt.Errorf("usage: morphinfo %s [-max N] <head.glb>", name)
	}

	a, err := loadAsset(fs.Arg(0), os.Stdin)
	if err != nil {
		return nil, nil, err
	}
	info, err := morph.BuildTargetInfo(a.Doc, morph.Discover(a.Doc), *maxSize)
	if err != nil {
		return nil, nil, err
	}
	return a, info, nil
}

// loadAsset opens path, or reads a binary asset from stdin when path is "-".
func loadAsset(path string, stdin io.Reader) (*assets.Asset, error) {
	if path != "-" {
		return assets.Load(path)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return assets.Decode(data, "stdin")
}

func cmdInfo(w io.Writer, args []string) error {
	a, info, err := loadInfo("info", args)
	if err != nil {
		return err
	}
	printInfo(w, a, info)
	return nil
}

func printInfo(w io.Writer, a *assets.Asset, info *morph.TargetInfo) {
	fmt.Fprintf(w, "Asset:     %s\n", a.Name)
	fmt.Fprintf(w, "Meshes:    %d\n", len(a.Doc.Meshes))
	fmt.Fprintf(w, "Mesh:      %d (%s)\n", info.MeshID, info.MeshName)
	fmt.Fprintf(w, "Primitive: %d\n", info.PrimitiveIdx)
	fmt.Fprintf(w, "Targets:   %d\n", info.TargetCount)
	fmt.Fprintf(w, "Vertices:  %d\n", info.VertexCount)
	fmt.Fprintf(w, "Channels:  %s\n", channels(info))
	fmt.Fprintf(w, "Texture:   %dx%d x %d layers (%.2f MB)\n",
		info.Width, info.Height, info.TargetCount,
		float64(info.Width*info.Height*info.TargetCount*16)/(1024*1024))
	for _, warn := range a.Warnings {
		fmt.Fprintf(w, "Warning:   %s\n", warn)
	}
}

func channels(info *morph.TargetInfo) string {
	s := ""
	add := func(ok bool, name string) {
		if !ok {
			return
		}
		if s != "" {
			s += " "
		}
		s += name
	}
	add(info.HasPosition, "position")
	add(info.HasNormal, "normal")
	add(info.HasColor, "color")
	if s == "" {
		return "(none)"
	}
	return s
}

func cmdTargets(w io.Writer, args []string) error {
	_, info, err := loadInfo("targets", args)
	if err != nil {
		return err
	}
	printTargets(w, info.Targets)
	return nil
}

func printTargets(w io.Writer, m morph.TargetMap) {
	type target struct {
		name  string
		index int
	}
	var list []target
	for name, i := range m.Names {
		list = append(list, target{name, i})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].index < list[j].index
	})
	for _, t := range list {
		fmt.Fprintf(w, "%4d  %s\n", t.index, t.name)
	}
	if skipped := m.Count - len(list); skipped > 0 {
		fmt.Fprintf(w, "(%d unnamed entries)\n", skipped)
	}
}

func cmdDeltas(w io.Writer, args []string) error {
	a, info, err := loadInfo("deltas", args)
	if err != nil {
		return err
	}
	layers, err := morph.Pack(a.Doc, info)
	if err != nil {
		return err
	}
	printDeltas(w, info, layers)
	return nil
}

// printDeltas lists the largest position displacement of each target.
func printDeltas(w io.Writer, info *morph.TargetInfo, layers []morph.Layer) {
	names := make(map[int]string, len(info.Targets.Names))
	for name, i := range info.Targets.Names {
		names[i] = name
	}
	for t, l := range layers {
		var peak float64
		for v := 0; v < info.VertexCount; v++ {
			d := l.Group(v, morph.GroupPosition)
			peak = math.Max(peak, math.Sqrt(float64(d[0]*d[0]+d[1]*d[1]+d[2]*d[2])))
		}
		fmt.Fprintf(w, "%4d  %-24s %.4f\n", t, names[t], peak)
	}
}

func cmdClip(w io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: morphinfo clip <clip.yaml>")
	}
	c, err := clip.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Clip:     %s\n", args[0])
	fmt.Fprintf(w, "FPS:      %g\n", c.FPS)
	fmt.Fprintf(w, "Frames:   %d (%s)\n", len(c.Frames), c.Duration())
	fmt.Fprintf(w, "Names:    %d\n", len(c.Names))
	if c.Mesh != "" {
		fmt.Fprintf(w, "Mesh:     %s\n", c.Mesh)
	}
	for i, f := range c.Frames {
		if len(f.Weights) != len(c.Names) {
			fmt.Fprintf(w, "Warning:  frame %d has %d weights for %d names\n", i, len(f.Weights), len(c.Names))
		}
	}
	return nil
}

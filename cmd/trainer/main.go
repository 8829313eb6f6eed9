package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
	"github.com/RogerXXH/limited-tic-tac-toe/internal/solver"
)

func main() {
	log.SetOutput(os.Stdout)
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	var err error
	switch os.Args[1] {
	case "train-explicit":
		err = runExplicit(os.Args[2:])
	case "train-xwin":
		err = runEdgeless(os.Args[2:], game.PlayerX, "xwin_4x4_m4.data")
	case "train-ywin":
		err = runEdgeless(os.Args[2:], game.PlayerO, "ywin_4x4_m4.data")
	case "merge":
		err = runMerge(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Printf("[trainer] %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: trainer <command> [flags] [args]

commands:
  train-explicit [output-path]          solve a small board with the explicit game graph
  train-xwin     [output-path]          edgeless X-win pass for large boards
  train-ywin     [output-path]          edgeless O-win pass for large boards
  merge <xwin-path> <ywin-path> <out>   merge the two single-sided tables
`)
}

func paramFlags(fs *flag.FlagSet, defaults game.Params) (*int, *int, *int) {
	n := fs.Int("n", defaults.BoardSize, "board side length")
	m := fs.Int("m", defaults.MaxMove, "per-side piece budget / win length")
	base := fs.Int("base", 0, "code digit base (0 = cells+1)")
	return n, m, base
}

func resolveParams(n, m, base int) (game.Params, error) {
	p := game.Params{BoardSize: n, MaxMove: m, Base: base}
	if p.Base == 0 {
		p.Base = p.Cells() + 1
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func runExplicit(args []string) error {
	fs := flag.NewFlagSet("train-explicit", flag.ExitOnError)
	n, m, base := paramFlags(fs, game.Params3x3())
	prune := fs.Bool("prune", false, "restrict X codes to first-move orbit representatives")
	fs.Parse(args)
	output := "game_tree_3x3.data"
	if fs.NArg() > 0 {
		output = fs.Arg(0)
	}
	params, err := resolveParams(*n, *m, *base)
	if err != nil {
		return err
	}
	log.Printf("[trainer] explicit solve %s -> %s", params, output)

	s := solver.NewGameTreeSolver(params, *prune)
	s.Build()
	s.Solve()
	logInitialState(s)
	if err := s.WriteTable(output); err != nil {
		return err
	}
	log.Printf("[trainer] wrote %d records to %s", s.StateCount(), output)
	return nil
}

func logInitialState(s *solver.GameTreeSolver) {
	dp, depth, ok := s.StateInfo(0)
	if !ok {
		return
	}
	verdict := "draw with perfect play"
	if dp[0] == 1 {
		verdict = "X forces a win"
	} else if dp[0] == -1 {
		verdict = "O forces a win"
	}
	log.Printf("[trainer] initial state: dp=[%d,%d] depth=[%d,%d] (%s)",
		dp[0], dp[1], depth[0], depth[1], verdict)
}

func runEdgeless(args []string, side game.PlayerColor, defaultOutput string) error {
	fs := flag.NewFlagSet("train-edgeless", flag.ExitOnError)
	n, m, base := paramFlags(fs, game.Params4x4())
	workers := fs.Int("workers", 0, "parallel sweep workers (0 = NumCPU)")
	fs.Parse(args)
	output := defaultOutput
	if fs.NArg() > 0 {
		output = fs.Arg(0)
	}
	params, err := resolveParams(*n, *m, *base)
	if err != nil {
		return err
	}
	sideName := "xwin"
	if side == game.PlayerO {
		sideName = "ywin"
	}
	log.Printf("[trainer] edgeless %s pass %s -> %s", sideName, params, output)

	s := solver.NewEdgelessSolver(params, side, *workers)
	if err := s.Run(output); err != nil {
		return err
	}
	if dp, depth, ok := s.StateInfo(0); ok {
		log.Printf("[trainer] initial state: dp=[%d,%d] depth=[%d,%d]",
			dp[0], dp[1], depth[0], depth[1])
	}
	return nil
}

func runMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 3 {
		return fmt.Errorf("merge needs <xwin-path> <ywin-path> <output-path>")
	}
	_, err := solver.MergeTables(fs.Arg(0), fs.Arg(1), fs.Arg(2))
	return err
}

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/OscarLo11212821/citadel/pkg/common"
)

var (
	flgDepth   = flag.Int("depth", 4, "perft depth")
	flgFen     = flag.String("fen", common.InitialPositionFen, "position to count from")
	flgDivide  = flag.Bool("divide", false, "print per-move subtree counts")
	flgWorkers = flag.Int("workers", runtime.NumCPU(), "parallel workers for divide")
)

func main() {
	flag.Parse()

	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var p, err = common.NewPositionFromFEN(*flgFen)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad fen")
	}

	if !*flgDivide {
		var st = common.PerftTimed(&p, *flgDepth)
		fmt.Printf("perft(%v) = %v\n", *flgDepth, st.Nodes)
		logger.Info().
			Int64("nodes", st.Nodes).
			Float64("seconds", st.Seconds).
			Float64("nps", st.NPS).
			Msg("perft done")
		return
	}

	// Each root move's subtree counts independently, so the divide fans out
	// across workers, one cloned position each.
	var buffer [common.MaxMoves]common.Move
	var ml = p.GenerateMoves(buffer[:])

	var total int64
	var results = make([]int64, len(ml))

	var g errgroup.Group
	g.SetLimit(*flgWorkers)
	for i, move := range ml {
		var i, move = i, move
		g.Go(func() error {
			var child = p.Clone()
			var u common.Undo
			child.MakeMove(move, &u)
			var nodes = common.Perft(&child, *flgDepth-1)
			results[i] = nodes
			atomic.AddInt64(&total, nodes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("perft failed")
	}

	for i, move := range ml {
		fmt.Printf("%-24v %v\n", move.String(), results[i])
	}
	fmt.Printf("total %v moves %v\n", total, len(ml))
}

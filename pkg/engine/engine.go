package engine

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/OscarLo11212821/citadel/pkg/common"
)

var errSearchTimeout = errors.New("search timeout")

// Evaluator is satisfied by both the hand-crafted and the NNUE evaluation
// services. Evaluate returns a centipawn-like score from the side-to-move
// perspective. The Make/Unmake callbacks let incremental evaluators carry
// their accumulator through the search; MakeMove is called after the
// position changed, with the Undo record describing the delta.
type Evaluator interface {
	Init(p *common.Position)
	MakeMove(p *common.Position, u *common.Undo)
	UnmakeMove()
	MakeNullMove(p *common.Position)
	UnmakeNullMove()
	Evaluate(p *common.Position) int
}

// ConservativePruner is implemented by evaluators whose static scores should
// prune less aggressively (the NNUE backend).
type ConservativePruner interface {
	ConservativePruning() bool
}

type Engine struct {
	Hash             int
	Threads          int
	UseTT            bool
	ProgressMinNodes int

	evalBuilder func() Evaluator
	transTable  *transTable
	thread      thread
	start       time.Time
	mainLine    mainLine
	progress    func(common.SearchInfo)
}

type thread struct {
	engine       *Engine
	evaluator    Evaluator
	position     common.Position
	nodes        int64
	seldepth     int
	rootDepth    int
	nodeLimit    int64
	deadline     time.Time
	hasDeadline  bool
	done         <-chan struct{}
	conservative bool
	history      historyTable
	keys         [stackSize + 1]uint64
	undos        [stackSize + 1]common.Undo
	nullUndos    [stackSize + 1]common.NullUndo
	stack        [stackSize + 1]struct {
		moveBuffer [common.MaxMoves]common.Move
		moveList   [common.MaxMoves]common.OrderedMove
		killer1    common.Move
		killer2    common.Move
		pv         pv
	}
}

type pv struct {
	items [stackSize]common.Move
	size  int
}

type mainLine struct {
	moves []common.Move
	score int
	depth int
}

func NewEngine(evalBuilder func() Evaluator) *Engine {
	return &Engine{
		Hash:             16,
		Threads:          1,
		UseTT:            true,
		ProgressMinNodes: 0,
		evalBuilder:      evalBuilder,
	}
}

func (e *Engine) Prepare() {
	if e.UseTT && (e.transTable == nil || e.transTable.Size() != e.Hash) {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		e.transTable = newTransTable(e.Hash)
	}
	if e.thread.evaluator == nil {
		e.thread.engine = e
		e.thread.evaluator = e.evalBuilder()
		e.thread.history.Clear()
	}
}

func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	e.thread.history.Clear()
}

// SetEvaluator swaps the evaluation backend. Must not be called while a
// search is in flight.
func (e *Engine) SetEvaluator(evalBuilder func() Evaluator) {
	e.evalBuilder = evalBuilder
	e.thread.evaluator = nil
}

// Search runs a blocking iterative-deepening search and returns the best
// line of the deepest completed iteration. It never fails: on time, node or
// ctx cancellation the current iteration aborts and the last completed
// result is returned.
func (e *Engine) Search(ctx context.Context, params common.SearchParams) common.SearchInfo {
	e.start = time.Now()
	e.Prepare()
	e.progress = params.Progress

	var t = &e.thread
	t.position = params.Position.Clone()
	t.nodes = 0
	t.seldepth = 0
	t.done = ctx.Done()
	t.nodeLimit = int64(params.Limits.Nodes)
	t.hasDeadline = false
	if params.Limits.MoveTime > 0 {
		t.deadline = e.start.Add(time.Duration(params.Limits.MoveTime) * time.Millisecond)
		t.hasDeadline = true
	}
	if cp, ok := t.evaluator.(ConservativePruner); ok {
		t.conservative = cp.ConservativePruning()
	} else {
		t.conservative = false
	}
	t.resetHeuristics()

	e.mainLine = mainLine{}

	var rootMoves = t.genRootMoves()
	if len(rootMoves) == 0 {
		return e.currentSearchResult()
	}

	// Fallback when no depth completes: the TT root entry if it is usable,
	// otherwise the first generated move with a stand-alone eval.
	var fallback = mainLine{moves: rootMoves[:1:1]}
	var haveTTRoot = false
	if e.UseTT {
		if _, ttScore, _, ttMove, ok := e.transTable.Read(hashPosition(&t.position)); ok {
			fallback.score = valueFromTT(ttScore, 0)
			if ttMove != common.MoveEmpty {
				for _, m := range rootMoves {
					if m == ttMove {
						fallback.moves = []common.Move{ttMove}
						break
					}
				}
			}
			haveTTRoot = true
		}
	}
	if !haveTTRoot {
		t.evaluator.Init(&t.position)
		fallback.score = t.evaluator.Evaluate(&t.position)
	}
	e.mainLine = fallback

	var maxDepth = params.Limits.Depth
	if maxDepth <= 0 || params.Limits.Infinite {
		maxDepth = maxHeight - 1
	}
	maxDepth = common.Min(maxDepth, maxHeight-1)

	t.iterate(maxDepth)

	return e.currentSearchResult()
}

func (t *thread) iterate(maxDepth int) {
	defer func() {
		if r := recover(); r != nil {
			if r == errSearchTimeout {
				return
			}
			panic(r)
		}
	}()

	// An already-cancelled search runs no iterations at all; the caller gets
	// the root fallback.
	select {
	case <-t.done:
		return
	default:
	}

	var e = t.engine
	var prevScore = 0
	for depth := 1; depth <= maxDepth; depth++ {
		var score = t.aspirationWindow(depth, prevScore)

		// The iteration completed; record it.
		prevScore = score
		e.mainLine = mainLine{
			depth: depth,
			score: score,
			moves: t.stack[0].pv.toSlice(),
		}
		if e.progress != nil && t.nodes >= int64(e.ProgressMinNodes) {
			e.progress(e.currentSearchResult())
		}

		// A forced win found well inside the horizon cannot improve.
		if score >= winIn(depth-5) || score <= lossIn(depth-5) {
			break
		}
	}
}

func (e *Engine) currentSearchResult() common.SearchInfo {
	var moves = e.mainLine.moves
	if moves == nil {
		moves = []common.Move{}
	}
	return common.SearchInfo{
		Depth:    e.mainLine.depth,
		Seldepth: e.thread.seldepth,
		MainLine: moves,
		Score:    newUciScore(e.mainLine.score),
		Nodes:    e.thread.nodes,
		Time:     time.Since(e.start),
	}
}

// EvaluatePosition scores a position without searching, from the side-to-move
// perspective.
func EvaluatePosition(p *common.Position, evaluator Evaluator) int {
	evaluator.Init(p)
	return evaluator.Evaluate(p)
}

// Evaluate scores a position with the engine's current backend, without
// searching.
func (e *Engine) Evaluate(p *common.Position) int {
	e.Prepare()
	return EvaluatePosition(p, e.thread.evaluator)
}

func (t *thread) resetHeuristics() {
	for i := range t.stack {
		t.stack[i].killer1 = common.MoveEmpty
		t.stack[i].killer2 = common.MoveEmpty
	}
	t.history.Clear()
}

func (t *thread) genRootMoves() []common.Move {
	var p = &t.position
	var buffer [common.MaxMoves]common.Move
	var ml = p.GenerateMoves(buffer[:])
	var result = make([]common.Move, len(ml))
	copy(result, ml)
	return result
}

func (t *thread) incNodes() {
	t.nodes++
	// Limits are polled every ~2k nodes: cheap and responsive enough.
	if t.nodes&2047 == 0 {
		select {
		case <-t.done:
			panic(errSearchTimeout)
		default:
		}
		if t.nodeLimit > 0 && t.nodes >= t.nodeLimit {
			panic(errSearchTimeout)
		}
		if t.hasDeadline && !time.Now().Before(t.deadline) {
			panic(errSearchTimeout)
		}
	}
}

func (pv *pv) clear() {
	pv.size = 0
}

func (pv *pv) assign(m common.Move, child *pv) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		pv.size += child.size
		copy(pv.items[1:], child.items[:child.size])
	}
}

func (pv *pv) toSlice() []common.Move {
	var result = make([]common.Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}

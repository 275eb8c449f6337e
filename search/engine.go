package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/pathviz/model"
)

const (
	// StepCost is the cost of one orthogonal move.
	StepCost = 10
	// DefaultTieBreak biases the heuristic towards the target so that
	// equal-cost frontiers are expanded along fewer, more direct paths.
	DefaultTieBreak = 0.1
)

var (
	ErrBusy        = errors.New("search engine is not idle")
	ErrUnreachable = errors.New("target unreachable")
)

type Status int

const (
	Idle Status = iota
	Running
	Succeeded
	Aborted
)

func (s Status) Name() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Succeeded:
		return "Succeeded"
	case Aborted:
		return "Aborted"
	default:
		return fmt.Sprintf("N/A(%d)", s)
	}
}

func (s Status) Terminal() bool {
	return s == Succeeded || s == Aborted
}

// Outcome is the data result of a run. A run that exhausts the frontier
// still Succeeds, with Outcome Unreachable.
type Outcome int

const (
	Undetermined Outcome = iota
	Found
	Unreachable
)

func (o Outcome) Name() string {
	switch o {
	case Undetermined:
		return "Undetermined"
	case Found:
		return "Path"
	case Unreachable:
		return "Unreachable"
	default:
		return fmt.Sprintf("N/A(%d)", o)
	}
}

type Options struct {
	// TieBreak scales the heuristic by (1 + TieBreak). 0 keeps A* optimal.
	TieBreak float64
	// StepDelay pauses after every expansion so observers can follow the
	// search. Zero for headless use.
	StepDelay time.Duration
}

// Heuristic is the Manhattan distance in step cost units.
func Heuristic(a, b model.Cell) int {
	return StepCost * (abs(a.X-b.X) + abs(a.Y-b.Y))
}

// Engine runs one A* search at a time on its own goroutine. All search
// state is guarded by mu; the search goroutine holds it for one expansion
// at a time, so readers never see a cell in both or neither of the open
// and closed sets.
type Engine struct {
	mu       sync.RWMutex
	status   Status
	outcome  Outcome
	runID    string
	open     *openSet
	closed   map[model.Cell]struct{}
	gScore   map[model.Cell]int
	fScore   map[model.Cell]int
	parent   map[model.Cell]model.Cell
	path     []model.Cell
	expanded int
	started  time.Time
	elapsed  time.Duration
	tieBreak float64

	stepDelay int64 // nanoseconds, atomic
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewEngine(opts Options) *Engine {
	e := &Engine{tieBreak: opts.TieBreak}
	e.clear()
	e.SetStepDelay(opts.StepDelay)
	return e
}

func (e *Engine) clear() {
	e.status = Idle
	e.outcome = Undetermined
	e.runID = ""
	e.open = newOpenSet()
	e.closed = make(map[model.Cell]struct{})
	e.gScore = make(map[model.Cell]int)
	e.fScore = make(map[model.Cell]int)
	e.parent = make(map[model.Cell]model.Cell)
	e.path = nil
	e.expanded = 0
	e.elapsed = 0
}

// SetStepDelay is safe to call while a search is running.
func (e *Engine) SetStepDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	atomic.StoreInt64(&e.stepDelay, int64(d))
}

func (e *Engine) StepDelay() time.Duration {
	return time.Duration(atomic.LoadInt64(&e.stepDelay))
}

// Start launches a search over a private copy of grid. The engine must be
// Idle; call Reset after a previous run.
func (e *Engine) Start(ctx context.Context, grid *model.Grid) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != Idle {
		return fmt.Errorf("start in %s: %w", e.status.Name(), ErrBusy)
	}

	g := grid.Clone()
	e.clear()
	e.status = Running
	e.runID = uuid.NewString()
	e.started = time.Now()

	h := Heuristic(g.Start, g.Target)
	e.gScore[g.Start] = h
	e.fScore[g.Start] = h
	e.open.push(h, g.Start)

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	log.WithField("run", e.runID).Infof("search started %v -> %v on %dx%d, %d obstacles",
		g.Start, g.Target, g.Width, g.Height, len(g.Obstacles))
	go e.run(runCtx, g, e.done)
	return nil
}

func (e *Engine) run(ctx context.Context, g *model.Grid, done chan struct{}) {
	defer close(done)
	for {
		if ctx.Err() != nil {
			e.finish(Aborted, Undetermined)
			return
		}
		if e.step(g) {
			return
		}
		if !e.pause(ctx) {
			e.finish(Aborted, Undetermined)
			return
		}
	}
}

// step performs one expansion and reports whether the run terminated.
func (e *Engine) step(g *model.Grid) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.open.Len() == 0 {
		e.finishLocked(Succeeded, Unreachable)
		return true
	}

	current := e.open.pop().Cell
	if current == g.Target {
		e.path = e.retrace(g.Start, current)
		e.finishLocked(Succeeded, Found)
		return true
	}

	e.closed[current] = struct{}{}
	e.expanded++
	expansionsTotal.Inc()

	for _, n := range neighbours(current, g) {
		if g.ContainsObstacle(n) {
			continue
		}
		if _, closed := e.closed[n]; closed {
			continue
		}
		tentative := e.gScore[current] + StepCost
		if _, scored := e.fScore[n]; scored && tentative >= e.gScore[n] {
			continue
		}
		e.gScore[n] = tentative
		e.fScore[n] = tentative + e.biased(Heuristic(n, g.Target))
		e.parent[n] = current
		e.open.push(e.fScore[n], n)
	}
	return false
}

func (e *Engine) biased(h int) int {
	return int(math.Round(float64(h) * (1 + e.tieBreak)))
}

// pause sleeps for the step delay and reports false if the run was
// cancelled meanwhile.
func (e *Engine) pause(ctx context.Context) bool {
	d := e.StepDelay()
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// retrace follows parent links from target to start and returns the path
// start first.
func (e *Engine) retrace(start, target model.Cell) []model.Cell {
	path := []model.Cell{target}
	for c := target; c != start; {
		p, found := e.parent[c]
		if !found {
			break
		}
		path = append(path, p)
		c = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (e *Engine) finish(status Status, outcome Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finishLocked(status, outcome)
}

func (e *Engine) finishLocked(status Status, outcome Outcome) {
	e.status = status
	e.outcome = outcome
	e.elapsed = time.Since(e.started)

	label := "aborted"
	switch {
	case status == Aborted:
	case outcome == Found:
		label = "found"
	case outcome == Unreachable:
		label = "unreachable"
	}
	runsTotal.WithLabelValues(label).Inc()
	runDuration.Observe(e.elapsed.Seconds())
	log.WithFields(log.Fields{
		"run":      e.runID,
		"expanded": e.expanded,
		"elapsed":  e.elapsed,
	}).Infof("search %s: %s", status.Name(), outcome.Name())
}

// Abort cancels a running search and waits for its goroutine to exit.
// It returns the status the run ended in.
func (e *Engine) Abort() Status {
	e.mu.RLock()
	cancel, done := e.cancel, e.done
	e.mu.RUnlock()
	if cancel != nil {
		cancel()
		<-done
	}
	return e.Status()
}

// Reset stops any running search and clears all search state.
func (e *Engine) Reset() {
	e.Abort()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancel = nil
	e.done = nil
	e.clear()
}

// Done is closed when the current run terminates. With no run it is
// already closed.
func (e *Engine) Done() <-chan struct{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return e.done
}

// Wait blocks until the current run terminates or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	select {
	case <-e.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

func (e *Engine) Outcome() Outcome {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.outcome
}

// Path returns a copy of the found path, start first, or nil.
func (e *Engine) Path() []model.Cell {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]model.Cell(nil), e.path...)
}

// Snapshot is a consistent, caller-owned copy of the search state.
type Snapshot struct {
	RunID    string
	Status   Status
	Outcome  Outcome
	Open     []model.ScoredCell
	Closed   []model.Cell
	GScore   map[model.Cell]int
	FScore   map[model.Cell]int
	Parent   map[model.Cell]model.Cell
	Path     []model.Cell
	Expanded int
	Elapsed  time.Duration
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	closed := make([]model.Cell, 0, len(e.closed))
	for c := range e.closed {
		closed = append(closed, c)
	}
	model.SortCells(closed)

	elapsed := e.elapsed
	if e.status == Running {
		elapsed = time.Since(e.started)
	}
	return Snapshot{
		RunID:    e.runID,
		Status:   e.status,
		Outcome:  e.outcome,
		Open:     e.open.entries(),
		Closed:   closed,
		GScore:   copyScores(e.gScore),
		FScore:   copyScores(e.fScore),
		Parent:   copyParents(e.parent),
		Path:     append([]model.Cell(nil), e.path...),
		Expanded: e.expanded,
		Elapsed:  elapsed,
	}
}

// neighbours lists in-bounds orthogonal neighbours: left, up, right, down.
func neighbours(c model.Cell, g *model.Grid) []model.Cell {
	out := make([]model.Cell, 0, 4)
	if c.X > 0 {
		out = append(out, model.Cell{X: c.X - 1, Y: c.Y})
	}
	if c.Y > 0 {
		out = append(out, model.Cell{X: c.X, Y: c.Y - 1})
	}
	if c.X < g.Width-1 {
		out = append(out, model.Cell{X: c.X + 1, Y: c.Y})
	}
	if c.Y < g.Height-1 {
		out = append(out, model.Cell{X: c.X, Y: c.Y + 1})
	}
	return out
}

func copyScores(m map[model.Cell]int) map[model.Cell]int {
	out := make(map[model.Cell]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyParents(m map[model.Cell]model.Cell) map[model.Cell]model.Cell {
	out := make(map[model.Cell]model.Cell, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

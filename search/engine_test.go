package search

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/pathviz/model"
)

func newGrid(t *testing.T, scale int) *model.Grid {
	t.Helper()
	g, err := model.NewGrid(scale)
	require.NoError(t, err)
	return g
}

// bfs returns the step count of a shortest path, or -1.
func bfs(g *model.Grid) int {
	dist := map[model.Cell]int{g.Start: 0}
	queue := []model.Cell{g.Start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == g.Target {
			return dist[c]
		}
		for _, n := range neighbours(c, g) {
			if _, seen := dist[n]; seen || g.ContainsObstacle(n) {
				continue
			}
			dist[n] = dist[c] + 1
			queue = append(queue, n)
		}
	}
	return -1
}

func requireValidPath(t *testing.T, g *model.Grid, path []model.Cell) {
	t.Helper()
	require.NotEmpty(t, path)
	assert.Equal(t, g.Start, path[0])
	assert.Equal(t, g.Target, path[len(path)-1])
	for i, c := range path {
		assert.True(t, g.InBounds(c), "%v in bounds", c)
		assert.False(t, g.ContainsObstacle(c), "%v is an obstacle", c)
		if i > 0 {
			assert.Equal(t, StepCost, Heuristic(path[i-1], c), "%v -> %v is one orthogonal step", path[i-1], c)
		}
	}
}

func TestHeuristic(t *testing.T) {
	assert.Equal(t, 0, Heuristic(model.Cell{X: 3, Y: 3}, model.Cell{X: 3, Y: 3}))
	assert.Equal(t, 70, Heuristic(model.Cell{X: 0, Y: 0}, model.Cell{X: 3, Y: 4}))
	assert.Equal(t, 70, Heuristic(model.Cell{X: 3, Y: 4}, model.Cell{X: 0, Y: 0}))
}

func TestNeighboursOrder(t *testing.T) {
	g := newGrid(t, 1)
	assert.Equal(t, []model.Cell{{X: 4, Y: 5}, {X: 5, Y: 4}, {X: 6, Y: 5}, {X: 5, Y: 6}}, neighbours(model.Cell{X: 5, Y: 5}, g))
	assert.Equal(t, []model.Cell{{X: 1, Y: 0}, {X: 0, Y: 1}}, neighbours(model.Cell{X: 0, Y: 0}, g))
	assert.Equal(t, []model.Cell{{X: 14, Y: 8}, {X: 15, Y: 7}}, neighbours(model.Cell{X: 15, Y: 8}, g))
}

func TestSolveOpenGrid(t *testing.T) {
	for _, tieBreak := range []float64{0, DefaultTieBreak} {
		g := newGrid(t, 1)
		res, err := Solve(context.Background(), g, Options{TieBreak: tieBreak})
		require.NoError(t, err)
		requireValidPath(t, g, res.Path)
		assert.Len(t, res.Path, 15+8+1, "tie-break %v", tieBreak)
	}
}

func TestSolveDeterministic(t *testing.T) {
	g := newGrid(t, 2)
	g.AddObstacles(model.Cell{X: 5, Y: 0}, model.Cell{X: 5, Y: 1}, model.Cell{X: 5, Y: 2}, model.Cell{X: 5, Y: 3}, model.Cell{X: 10, Y: 17}, model.Cell{X: 10, Y: 16})

	first, err := Solve(context.Background(), g, Options{TieBreak: DefaultTieBreak})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Solve(context.Background(), g, Options{TieBreak: DefaultTieBreak})
		require.NoError(t, err)
		assert.Equal(t, first.Path, again.Path)
		assert.Equal(t, first.Expanded, again.Expanded)
	}
}

func TestSolveMatchesBFS(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		w, h := 3+rng.Intn(10), 3+rng.Intn(8)
		start := model.Cell{X: rng.Intn(w), Y: rng.Intn(h)}
		target := model.Cell{X: rng.Intn(w), Y: rng.Intn(h)}
		if start == target {
			continue
		}
		g, err := model.NewGridSize(w, h, start, target)
		require.NoError(t, err)
		for i := 0; i < w*h/3; i++ {
			g.AddObstacles(model.Cell{X: rng.Intn(w), Y: rng.Intn(h)})
		}

		want := bfs(g)
		res, err := Solve(context.Background(), g, Options{TieBreak: 0})
		if want < 0 {
			assert.ErrorIs(t, err, ErrUnreachable, "round %d\n%s", round, g.Layout(nil))
			assert.Empty(t, res.Path)
			continue
		}
		require.NoError(t, err, "round %d\n%s", round, g.Layout(nil))
		requireValidPath(t, g, res.Path)
		assert.Equal(t, want, len(res.Path)-1, "round %d\n%s", round, g.Layout(res.Path))
	}
}

func TestSolveUnreachable(t *testing.T) {
	g := newGrid(t, 1)
	// wall the target into its corner
	g.AddObstacles(model.Cell{X: 14, Y: 8}, model.Cell{X: 14, Y: 7}, model.Cell{X: 15, Y: 7})

	res, err := Solve(context.Background(), g, Options{TieBreak: DefaultTieBreak})
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Empty(t, res.Path)
	// every reachable cell was expanded
	assert.Equal(t, 16*9-3-1, res.Expanded)
}

func TestEngineUnreachableIsNotAFailure(t *testing.T) {
	g := newGrid(t, 1)
	g.AddObstacles(model.Cell{X: 1, Y: 0}, model.Cell{X: 0, Y: 1})

	e := NewEngine(Options{})
	require.NoError(t, e.Start(context.Background(), g))
	require.NoError(t, e.Wait(context.Background()))

	snap := e.Snapshot()
	assert.Equal(t, Succeeded, snap.Status)
	assert.Equal(t, Unreachable, snap.Outcome)
	assert.Empty(t, snap.Path)
	assert.Equal(t, []model.Cell{{X: 0, Y: 0}}, snap.Closed)
	assert.Empty(t, snap.Open)
}

func TestEngineLifecycle(t *testing.T) {
	g := newGrid(t, 1)
	e := NewEngine(Options{TieBreak: DefaultTieBreak})
	assert.Equal(t, Idle, e.Status())
	assert.Equal(t, Undetermined, e.Outcome())

	require.NoError(t, e.Start(context.Background(), g))
	require.NoError(t, e.Wait(context.Background()))
	assert.Equal(t, Succeeded, e.Status())
	assert.Equal(t, Found, e.Outcome())
	requireValidPath(t, g, e.Path())

	assert.ErrorIs(t, e.Start(context.Background(), g), ErrBusy, "Running is only entered from Idle")

	e.Reset()
	snap := e.Snapshot()
	assert.Equal(t, Idle, snap.Status)
	assert.Empty(t, snap.Open)
	assert.Empty(t, snap.Closed)
	assert.Empty(t, snap.FScore)
	assert.Empty(t, snap.Path)
	assert.Empty(t, snap.RunID)

	require.NoError(t, e.Start(context.Background(), g))
	require.NoError(t, e.Wait(context.Background()))
	assert.Equal(t, Found, e.Outcome())
}

func TestEngineWorksOnACopy(t *testing.T) {
	g := newGrid(t, 1)
	e := NewEngine(Options{StepDelay: time.Hour})
	require.NoError(t, e.Start(context.Background(), g))

	// mutate the caller's grid while the run is paused
	g.AddObstacles(model.Cell{X: 1, Y: 0}, model.Cell{X: 0, Y: 1})
	e.SetStepDelay(0)
	e.Abort()

	e.Reset()
	g.ClearObstacles()
	require.NoError(t, e.Start(context.Background(), g))
	g.AddObstacles(model.Cell{X: 1, Y: 0}, model.Cell{X: 0, Y: 1})
	require.NoError(t, e.Wait(context.Background()))
	assert.Equal(t, Found, e.Outcome())
}

func TestEngineAbort(t *testing.T) {
	g := newGrid(t, 4)
	e := NewEngine(Options{StepDelay: time.Hour})
	require.NoError(t, e.Start(context.Background(), g))

	// the first expansion runs before the first pause
	require.Eventually(t, func() bool { return e.Snapshot().Expanded == 1 }, time.Second, time.Millisecond)
	snap := e.Snapshot()
	assert.Equal(t, Running, snap.Status)
	assert.NotEmpty(t, snap.RunID)
	assert.Equal(t, []model.Cell{g.Start}, snap.Closed)
	assert.Len(t, snap.Open, 2)

	done := make(chan Status)
	go func() { done <- e.Abort() }()
	select {
	case status := <-done:
		assert.Equal(t, Aborted, status)
	case <-time.After(5 * time.Second):
		t.Fatal("abort did not join the search")
	}
	assert.Equal(t, Undetermined, e.Outcome())
	assert.Empty(t, e.Path())
}

func TestEngineParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := NewEngine(Options{StepDelay: time.Hour})
	require.NoError(t, e.Start(ctx, newGrid(t, 1)))
	cancel()
	require.NoError(t, e.Wait(context.Background()))
	assert.Equal(t, Aborted, e.Status())
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Solve(ctx, newGrid(t, 1), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotOpenOrdered(t *testing.T) {
	g := newGrid(t, 2)
	e := NewEngine(Options{TieBreak: DefaultTieBreak})
	require.NoError(t, e.Start(context.Background(), g))
	require.NoError(t, e.Wait(context.Background()))

	snap := e.Snapshot()
	for i := 1; i < len(snap.Open); i++ {
		prev, cur := snap.Open[i-1], snap.Open[i]
		assert.True(t, prev.Score < cur.Score || prev.Score == cur.Score && prev.Cell.Less(cur.Cell),
			"%v before %v", prev, cur)
	}
	for _, entry := range snap.Open {
		assert.Equal(t, snap.FScore[entry.Cell], entry.Score)
	}
	assert.Equal(t, Heuristic(g.Start, g.Target), snap.GScore[g.Start])
}

func TestSetStepDelayWhileRunning(t *testing.T) {
	e := NewEngine(Options{StepDelay: time.Hour})
	require.NoError(t, e.Start(context.Background(), newGrid(t, 1)))
	require.Eventually(t, func() bool { return e.Snapshot().Expanded == 1 }, time.Second, time.Millisecond)

	// the pending hour-long pause still has to be cut short by an abort
	e.SetStepDelay(0)
	assert.Equal(t, time.Duration(0), e.StepDelay())
	e.SetStepDelay(-time.Second)
	assert.Equal(t, time.Duration(0), e.StepDelay())
	assert.Equal(t, Aborted, e.Abort())
}

// TestConcurrentSnapshots polls the engine while it runs and checks that
// no snapshot ever shows a cell in both sets, or a scored cell in neither.
func TestConcurrentSnapshots(t *testing.T) {
	g := newGrid(t, 4)
	for x := 8; x < 60; x += 8 {
		for y := 0; y < 32; y++ {
			g.AddObstacles(model.Cell{X: x, Y: (y + x) % 36})
		}
	}

	e := NewEngine(Options{TieBreak: DefaultTieBreak})
	require.NoError(t, e.Start(context.Background(), g))

	var wg sync.WaitGroup
	polls := make([]int, 4)
	for r := range polls {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			for {
				snap := e.Snapshot()
				polls[r]++

				open := make(map[model.Cell]bool, len(snap.Open))
				for _, entry := range snap.Open {
					assert.False(t, open[entry.Cell], "%v queued twice", entry.Cell)
					open[entry.Cell] = true
				}
				closed := make(map[model.Cell]bool, len(snap.Closed))
				for _, c := range snap.Closed {
					assert.False(t, open[c], "%v open and closed", c)
					closed[c] = true
				}
				for c := range snap.FScore {
					if c == g.Target && snap.Outcome == Found {
						continue
					}
					assert.True(t, open[c] || closed[c], "%v scored but in neither set", c)
				}
				assert.Equal(t, len(snap.Closed), snap.Expanded)

				if snap.Status.Terminal() {
					return
				}
			}
		}(r)
	}
	wg.Wait()

	assert.Equal(t, Succeeded, e.Status())
	for _, n := range polls {
		assert.Positive(t, n)
	}
}

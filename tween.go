package main

import "github.com/tanema/gween"

// Action is what a running tween drives: a value callback, hooks for when
// it finishes and tweens to start after it.
type Action struct {
	nexts    []func(g *Game)
	onChange func(float32)
	onFinish []func()
}

func (a *Action) addOnFinish(f func()) {
	if a.onFinish == nil {
		a.onFinish = make([]func(), 0)
	}
	a.onFinish = append(a.onFinish, f)
}

// next chains t after a and returns the action t will drive.
func (a *Action) next(t *gween.Tween) *Action {
	action := Action{}
	if a.nexts == nil {
		a.nexts = make([]func(g *Game), 0)
	}
	a.nexts = append(a.nexts,
		func(g *Game) {
			g.Tweens[t] = action
		})
	return &action
}

// stepTweens advances every tween by dt.
func (g *Game) stepTweens(dt float32) {
	for t, a := range g.Tweens {
		curr, finished := t.Update(dt)
		if a.onChange != nil {
			a.onChange(curr)
		}
		if !finished {
			continue
		}
		for _, onFinish := range a.onFinish {
			onFinish()
		}
		for _, next := range a.nexts {
			next(g)
		}
		delete(g.Tweens, t)
	}
}

func (g *Game) stopTweens() {
	for t := range g.Tweens {
		delete(g.Tweens, t)
	}
	g.revealed = 0
	g.pulse = 1
}

package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"time"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/hajimehoshi/ebiten/inpututil"
	"github.com/hajimehoshi/ebiten/text"
	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zucenko/pathviz/config"
	"github.com/zucenko/pathviz/model"
	"github.com/zucenko/pathviz/search"
	"github.com/zucenko/pathviz/session"
)

const (
	delayStep = 10 * time.Millisecond
	frameTime = float32(1) / 60
)

func HexToRGBA(u uint32) color.RGBA {
	return color.RGBA{R: uint8(u >> 16), G: uint8(u >> 8), B: uint8(u), A: 0xff}
}

var (
	COLOR_BACKGROUND = HexToRGBA(0x464646)
	COLOR_FREE       = HexToRGBA(0x5a5a5a)
	COLOR_OBSTACLE   = HexToRGBA(0x1c1c1c)
	COLOR_START      = HexToRGBA(0x0abd38)
	COLOR_TARGET     = HexToRGBA(0xfa3636)
	COLOR_OPEN       = HexToRGBA(0x34fbf6)
	COLOR_PATH       = HexToRGBA(0xedbc1e)
	COLOR_GRID       = color.RGBA{0, 0, 0, 0x60}
)

// HSLToRGBA converts hue in degrees, saturation and lightness in [0,1].
func HSLToRGBA(h, s, l float64) color.RGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 0xff,
	}
}

// StrokeSource represents a input device to provide strokes.
type StrokeSource interface {
	Position() (int, int)
	IsJustReleased() bool
}

// MouseStrokeSource is a StrokeSource implementation of mouse.
type MouseStrokeSource struct{}

func (m *MouseStrokeSource) Position() (int, int) {
	return ebiten.CursorPosition()
}

func (m *MouseStrokeSource) IsJustReleased() bool {
	return inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
}

// TouchStrokeSource is a StrokeSource implementation of touch.
type TouchStrokeSource struct {
	ID int
}

func (t *TouchStrokeSource) Position() (int, int) {
	return ebiten.TouchPosition(t.ID)
}

func (t *TouchStrokeSource) IsJustReleased() bool {
	return inpututil.IsTouchJustReleased(t.ID)
}

// Stroke follows one press-drag-release over the grid.
type Stroke struct {
	source   StrokeSource
	cell     model.Cell
	released bool
}

func NewStroke(source StrokeSource, cell model.Cell) *Stroke {
	return &Stroke{source: source, cell: cell}
}

type Game struct {
	Session *session.Session
	Width   int
	Height  int
	Font    font.Face
	Panel   *Nine

	strokes  map[*Stroke]struct{}
	Tweens   map[*gween.Tween]Action
	frame    Frame
	revealed int
	pulse    float32
	showGrid bool
}

func NewGame(s *session.Session, cfg config.Config) (*Game, error) {
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	const dpi = 72
	face := truetype.NewFace(tt, &truetype.Options{
		Size:    16,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	panel, err := NewPanel()
	if err != nil {
		return nil, err
	}
	return &Game{
		Session:  s,
		Width:    cfg.Viewer.Width,
		Height:   cfg.Viewer.Height,
		Font:     face,
		Panel:    panel,
		strokes:  map[*Stroke]struct{}{},
		Tweens:   make(map[*gween.Tween]Action),
		pulse:    1,
		showGrid: true,
	}, nil
}

func ctrl() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl)
}

var scaleKeys = []struct {
	key   ebiten.Key
	scale int
}{
	{ebiten.Key1, 1},
	{ebiten.Key2, 2},
	{ebiten.Key3, 4},
	{ebiten.Key4, 5},
	{ebiten.Key5, 8},
	{ebiten.Key6, 10},
}

func (g *Game) updateKeys() {
	var err error
	switch {
	case ctrl() && inpututil.IsKeyJustPressed(ebiten.KeyR):
		err = g.Session.Run(context.Background())
	case ctrl() && inpututil.IsKeyJustPressed(ebiten.KeyA):
		err = g.Session.Stop()
	case ctrl() && inpututil.IsKeyJustPressed(ebiten.KeyD):
		_, err = g.Session.ClearObstacles()
	case ctrl() && inpututil.IsKeyJustPressed(ebiten.KeyZ):
		err = g.Session.Undo()
	case ctrl() && inpututil.IsKeyJustPressed(ebiten.KeyY):
		err = g.Session.Redo()
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.showGrid = !g.showGrid
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.Session.SetStepDelay(g.Session.StepDelay() + delayStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.Session.SetStepDelay(g.Session.StepDelay() - delayStep)
	default:
		for _, sk := range scaleKeys {
			if inpututil.IsKeyJustPressed(sk.key) {
				err = g.Session.SetScale(sk.scale)
				break
			}
		}
	}
	if err != nil {
		log.WithError(err).Debug("key command rejected")
	}
}

func (g *Game) cellAt(x, y int) model.Cell {
	return model.CellAt(x, y, g.frame.CellSize)
}

func (g *Game) updateStroke(stroke *Stroke) {
	if stroke.source.IsJustReleased() {
		stroke.released = true
		if err := g.Session.Release(stroke.cell); err != nil {
			log.WithError(err).Debug("release rejected")
		}
		return
	}
	cell := g.cellAt(stroke.source.Position())
	if cell == stroke.cell {
		return
	}
	stroke.cell = cell
	if err := g.Session.Drag(cell); err != nil {
		log.WithError(err).Debug("drag rejected")
	}
}

func (g *Game) updateInput() {
	g.updateKeys()

	// the session keeps one gesture, so only one stroke is followed
	if len(g.strokes) == 0 {
		var source StrokeSource
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			source = &MouseStrokeSource{}
		}
		for _, id := range inpututil.JustPressedTouchIDs() {
			source = &TouchStrokeSource{id}
			break
		}
		if source != nil {
			s := NewStroke(source, g.cellAt(source.Position()))
			if err := g.Session.Press(s.cell); err != nil {
				log.WithError(err).Debug("press rejected")
			} else {
				g.strokes[s] = struct{}{}
			}
		}
	}

	for s := range g.strokes {
		g.updateStroke(s)
		if s.released {
			delete(g.strokes, s)
		}
	}
}

// updateTweens starts the path reveal when a run finishes and drops it
// when the session leaves Finished.
func (g *Game) updateTweens(prev Frame) {
	if g.frame.Phase == session.Finished && prev.Phase != session.Finished && len(g.frame.Path) > 0 {
		reveal := gween.New(0, float32(len(g.frame.Path)), 0.6, ease.OutQuad)
		action := Action{onChange: func(v float32) { g.revealed = int(math.Ceil(float64(v))) }}
		pulse := action.next(gween.New(1, 0.6, 0.4, ease.InOutQuad))
		pulse.onChange = func(v float32) { g.pulse = v }
		pulse.addOnFinish(func() { g.pulse = 1 })
		g.Tweens[reveal] = action
	}
	if g.frame.Phase != session.Finished {
		g.stopTweens()
	}
	g.stepTweens(frameTime)
}

func (g *Game) update(screen *ebiten.Image) error {
	prev := g.frame
	g.frame = g.poll()
	g.updateTweens(prev)
	g.updateInput()

	if ebiten.IsDrawingSkipped() {
		return nil
	}
	if err := screen.Fill(COLOR_BACKGROUND); err != nil {
		return err
	}
	if g.frame.CellSize == 0 {
		ebitenutil.DebugPrint(screen, "window does not fit the grid")
		return nil
	}
	g.drawGrid(screen)
	g.drawHUD(screen)
	return nil
}

func (g *Game) fillCell(screen *ebiten.Image, c model.Cell, clr color.Color, inset float64) {
	cs := float64(g.frame.CellSize)
	ebitenutil.DrawRect(screen, float64(c.X)*cs+inset, float64(c.Y)*cs+inset, cs-2*inset, cs-2*inset, clr)
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	f := g.frame
	grid := f.Grid
	scale := grid.Scale()
	if scale == 0 {
		scale = 1
	}

	for x := 0; x < grid.Width; x++ {
		for y := 0; y < grid.Height; y++ {
			g.fillCell(screen, model.Cell{X: x, Y: y}, COLOR_FREE, 0)
		}
	}
	for _, c := range f.Search.Closed {
		hue := float64((search.Heuristic(c, grid.Target) / scale) % 360)
		g.fillCell(screen, c, HSLToRGBA(hue, 0.55, 0.45), 0)
	}
	for _, entry := range f.Search.Open {
		g.fillCell(screen, entry.Cell, COLOR_OPEN, 0)
	}
	for _, c := range grid.ObstacleList() {
		g.fillCell(screen, c, COLOR_OBSTACLE, 0)
	}

	cs := float64(f.CellSize)
	inset := cs / 4
	for i := 0; i < g.revealed && i < len(f.Path); i++ {
		g.fillCell(screen, f.Path[i], COLOR_PATH, inset)
		if i > 0 {
			a, b := f.Path[i-1], f.Path[i]
			ebitenutil.DrawLine(screen,
				(float64(a.X)+.5)*cs, (float64(a.Y)+.5)*cs,
				(float64(b.X)+.5)*cs, (float64(b.Y)+.5)*cs, COLOR_PATH)
		}
	}

	g.fillCell(screen, grid.Start, COLOR_START, cs/8)
	g.fillCell(screen, grid.Target, COLOR_TARGET, cs/8+cs*float64(1-g.pulse)/2)

	if g.showGrid && f.CellSize > 4 {
		w, h := float64(grid.Width)*cs, float64(grid.Height)*cs
		for x := 0; x <= grid.Width; x++ {
			ebitenutil.DrawLine(screen, float64(x)*cs, 0, float64(x)*cs, h, COLOR_GRID)
		}
		for y := 0; y <= grid.Height; y++ {
			ebitenutil.DrawLine(screen, 0, float64(y)*cs, w, float64(y)*cs, COLOR_GRID)
		}
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	f := g.frame
	lines := []string{
		fmt.Sprintf("%s  x%d  %dx%d", f.Phase.Name(), f.Grid.Scale(), f.Grid.Width, f.Grid.Height),
		fmt.Sprintf("open %d  closed %d  delay %v", len(f.Search.Open), len(f.Search.Closed), f.StepDelay),
		fmt.Sprintf("undo %d  redo %d", f.UndoCount, f.RedoCount),
	}
	switch {
	case f.Phase == session.Finished && f.Search.Outcome == search.Found:
		lines = append(lines, fmt.Sprintf("path %d steps in %v", len(f.Path)-1, f.Search.Elapsed.Round(time.Millisecond)))
	case f.Phase == session.Finished:
		lines = append(lines, "no path")
	}
	if hover := g.cellAt(ebiten.CursorPosition()); f.Grid.InBounds(hover) {
		lines = append(lines, fmt.Sprintf("%v  h %d", hover, g.Session.HeuristicAt(hover)))
	}

	const lineHeight = 20
	g.Panel.SetPosition(8, 8)
	g.Panel.SetSize(300, lineHeight*len(lines)+16)
	g.Panel.Draw(screen)
	for i, line := range lines {
		text.Draw(screen, line, g.Font, 18, 8+lineHeight*(i+1), color.White)
	}
}

func main() {
	s, cfg, err := Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	cfg.SetupLogging()
	game, err := NewGame(s, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = s.Stop() }()
	if err := ebiten.Run(game.update, cfg.Viewer.Width, cfg.Viewer.Height, 1, "pathviz"); err != nil {
		log.Fatal(err)
	}
}

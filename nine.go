package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten"
)

const panelCorner = 6

// NewPanel returns the HUD backdrop: a nine-patch over a small rounded
// frame drawn in memory.
func NewPanel() (*Nine, error) {
	const side = 3 * panelCorner
	src := image.NewRGBA(image.Rect(0, 0, side, side))
	border := color.RGBA{0xc8, 0xc8, 0xc8, 0xff}
	fill := color.RGBA{0x1e, 0x1e, 0x1e, 0xd8}
	for x := 0; x < side; x++ {
		for y := 0; y < side; y++ {
			dx, dy := edgeDistance(x, side), edgeDistance(y, side)
			switch {
			case dx+dy < panelCorner/2:
				// rounded corner, left transparent
			case dx == 0 || dy == 0 || dx+dy == panelCorner/2:
				src.Set(x, y, border)
			default:
				src.Set(x, y, fill)
			}
		}
	}
	img, err := ebiten.NewImageFromImage(src, ebiten.FilterDefault)
	if err != nil {
		return nil, err
	}
	return &Nine{
		images: img,
		alpha:  1,
		R:      1, G: 1, B: 1, Scale: 1,
		positions: [4][2]int{{0, 0}, {panelCorner, panelCorner}, {2 * panelCorner, 2 * panelCorner}, {side, side}},
	}, nil
}

func edgeDistance(v, side int) int {
	if d := side - 1 - v; d < v {
		return d
	}
	return v
}

// Nine draws a nine-patch: corners keep their size, edges and centre
// stretch to fill the rectangle.
type Nine struct {
	images              *ebiten.Image
	alpha               float64
	R, G, B, Scale      float64
	positions           [4][2]int
	x, y, width, height int
	scaleCenterWidth    float64
	scaleCenterHeight   float64
	targetPositions     [4][2]float64
}

func (n *Nine) SetPosition(x, y int) {
	n.x = x
	n.y = y
	n.SetSize(n.width, n.height)
}

func (n *Nine) SetSize(width, height int) {
	n.width = width
	n.height = height
	n.targetPositions[0][0] = float64(n.x)
	n.targetPositions[0][1] = float64(n.y)

	n.targetPositions[1][0] = float64(n.x) + n.Scale*float64(n.positions[1][0])
	n.targetPositions[1][1] = float64(n.y) + n.Scale*float64(n.positions[1][1])

	n.targetPositions[2][0] = float64(n.x+n.width) - n.Scale*float64(n.positions[3][0]-n.positions[2][0])
	n.targetPositions[2][1] = float64(n.y+n.height) - n.Scale*float64(n.positions[3][1]-n.positions[2][1])

	innerWidth := n.targetPositions[2][0] - n.targetPositions[1][0]
	innerHigh := n.targetPositions[2][1] - n.targetPositions[1][1]

	n.scaleCenterWidth = float64(innerWidth) / float64(n.positions[2][0]-n.positions[1][0])
	n.scaleCenterHeight = float64(innerHigh) / float64(n.positions[2][1]-n.positions[1][1])

}

func (n *Nine) Draw(screen *ebiten.Image) {

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(n.Scale, n.Scale)
	op.GeoM.Translate(n.targetPositions[0][0], n.targetPositions[0][1])
	op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
	screen.DrawImage(n.images.SubImage(image.Rect(n.positions[0][0], n.positions[0][1], n.positions[1][0], n.positions[1][1])).(*ebiten.Image), op)

	op = &ebiten.DrawImageOptions{}
	op.GeoM.Scale(n.scaleCenterWidth, n.Scale)
	op.GeoM.Translate(n.targetPositions[1][0], n.targetPositions[0][1])
	op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
	screen.DrawImage(n.images.SubImage(image.Rect(n.positions[1][0], n.positions[0][1], n.positions[2][0], n.positions[1][1])).(*ebiten.Image), op)

	op = &ebiten.DrawImageOptions{}
	op.GeoM.Scale(n.Scale, n.Scale)
	op.GeoM.Translate(n.targetPositions[2][0], n.targetPositions[0][1])
	op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
	screen.DrawImage(n.images.SubImage(image.Rect(n.positions[2][0], n.positions[0][1], n.positions[3][0], n.positions[1][1])).(*ebiten.Image), op)
	op = &ebiten.DrawImageOptions{}
	op.GeoM.Scale(n.Scale, n.scaleCenterHeight)
	op.GeoM.Translate(n.targetPositions[0][0], n.targetPositions[1][1])
	op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
	screen.DrawImage(n.images.SubImage(image.Rect(n.positions[0][0], n.positions[1][1], n.positions[1][0], n.positions[2][1])).(*ebiten.Image), op)

	op = &ebiten.DrawImageOptions{}
	op.GeoM.Scale(n.scaleCenterWidth, n.scaleCenterHeight)
	op.GeoM.Translate(n.targetPositions[1][0], n.targetPositions[1][1])
	op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
	screen.DrawImage(n.images.SubImage(image.Rect(n.positions[1][0], n.positions[1][1], n.positions[2][0], n.positions[2][1])).(*ebiten.Image), op)

	op = &ebiten.DrawImageOptions{}
	op.GeoM.Scale(n.Scale, n.scaleCenterHeight)
	op.GeoM.Translate(n.targetPositions[2][0], n.targetPositions[1][1])
	op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
	screen.DrawImage(n.images.SubImage(image.Rect(n.positions[2][0], n.positions[1][1], n.positions[3][0], n.positions[2][1])).(*ebiten.Image), op)
	op = &ebiten.DrawImageOptions{}
	op.GeoM.Scale(n.Scale, n.Scale)
	op.GeoM.Translate(n.targetPositions[0][0], n.targetPositions[2][1])
	op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
	screen.DrawImage(n.images.SubImage(image.Rect(n.positions[0][0], n.positions[2][1], n.positions[1][0], n.positions[3][1])).(*ebiten.Image), op)

	op = &ebiten.DrawImageOptions{}
	op.GeoM.Scale(n.scaleCenterWidth, n.Scale)
	op.GeoM.Translate(n.targetPositions[1][0], n.targetPositions[2][1])
	op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
	screen.DrawImage(n.images.SubImage(image.Rect(n.positions[1][0], n.positions[2][1], n.positions[2][0], n.positions[3][1])).(*ebiten.Image), op)

	op = &ebiten.DrawImageOptions{}
	op.GeoM.Scale(n.Scale, n.Scale)
	op.GeoM.Translate(n.targetPositions[2][0], n.targetPositions[2][1])
	op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
	screen.DrawImage(n.images.SubImage(image.Rect(n.positions[2][0], n.positions[2][1], n.positions[3][0], n.positions[3][1])).(*ebiten.Image), op)
}

package tui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"seatmap-cli/canvas"
	"seatmap-cli/model"
	"seatmap-cli/seatmap"
)

const (
	seatGlyph       = '●'
	colorAvailable  = "2"
	colorBooked     = "1"
	colorSelected   = "3"
	colorHover      = "11"
	colorLabel      = "15"
	colorOffCanvas  = "235"
	labelGap        = 1
	minCanvasHeight = 1
)

// cell is one terminal character of the canvas. Empty colours mean the
// terminal default.
type cell struct {
	r    rune
	fg   string
	bg   string
	bold bool
}

func (c cell) sameStyle(o cell) bool {
	return c.fg == o.fg && c.bg == o.bg && c.bold == o.bold
}

// renderCanvas draws the floor plan and the seats for a width x height area.
// The output is a projection of the engine state plus the view transform;
// nothing here mutates either.
func (m appModel) renderCanvas(width, height int) string {
	if width <= 0 || height < minCanvasHeight {
		return ""
	}
	state := m.engine.State()
	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
	}

	m.paintBackground(grid, state.Size)
	m.paintSeats(grid, state)

	var b strings.Builder
	for y, row := range grid {
		writeRow(&b, row)
		if y < len(grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// paintBackground samples the floor plan once per cell, through the inverse
// view transform. The image is stretched over the whole surface.
func (m appModel) paintBackground(grid [][]cell, size canvas.Size) {
	var bounds image.Rectangle
	if m.image != nil {
		bounds = m.image.Bounds()
	}
	srcW, srcH := bounds.Dx(), bounds.Dy()
	for y, row := range grid {
		for x := range row {
			row[x] = cell{r: ' ', bg: colorOffCanvas}
			if srcW == 0 || srcH == 0 || !size.Valid() {
				continue
			}
			at := m.view.ScreenToCanvas(canvas.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			if at.X < 0 || at.Y < 0 || at.X >= size.Width || at.Y >= size.Height {
				continue
			}
			sx := bounds.Min.X + int(at.X/size.Width*float64(srcW))
			sy := bounds.Min.Y + int(at.Y/size.Height*float64(srcH))
			if sx >= bounds.Max.X {
				sx = bounds.Max.X - 1
			}
			if sy >= bounds.Max.Y {
				sy = bounds.Max.Y - 1
			}
			row[x].bg = hexColor(m.image.At(sx, sy))
		}
	}
}

func (m appModel) paintSeats(grid [][]cell, state seatmap.State) {
	if !state.Size.Valid() {
		return
	}
	abs := m.view.Transform()
	dragID, dragAt, dragging := m.dragPosition()

	for _, seat := range state.Seats {
		at := seatmap.ScreenPosition(seat, state.Size, abs)
		if dragging && seat.Id == dragID {
			at = dragAt
		}
		x, y := int(math.Floor(at.X)), int(math.Floor(at.Y))
		if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
			continue
		}

		c := &grid[y][x]
		c.r = seatGlyph
		c.fg = seatColor(seat)
		switch {
		case state.IsSelected(seat.Id):
			c.bg = colorSelected
			c.bold = true
		case seat.Id == m.hover:
			c.fg = colorHover
			c.bold = true
		}

		if !m.showLabels {
			continue
		}
		lx := x + 1 + labelGap
		for _, r := range seat.Label {
			if lx >= len(grid[y]) {
				break
			}
			if grid[y][lx].r == seatGlyph {
				break
			}
			grid[y][lx].r = r
			grid[y][lx].fg = colorLabel
			lx++
		}
	}
}

func seatColor(seat model.Seat) string {
	if seat.IsBooked {
		return colorBooked
	}
	return colorAvailable
}

// writeRow emits runs of equally styled cells through a single style.
func writeRow(b *strings.Builder, row []cell) {
	for start := 0; start < len(row); {
		end := start + 1
		for end < len(row) && row[end].sameStyle(row[start]) {
			end++
		}
		var text strings.Builder
		for _, c := range row[start:end] {
			text.WriteRune(c.r)
		}
		b.WriteString(cellStyle(row[start]).Render(text.String()))
		start = end
	}
}

func cellStyle(c cell) lipgloss.Style {
	style := lipgloss.NewStyle()
	if c.fg != "" {
		style = style.Foreground(lipgloss.Color(c.fg))
	}
	if c.bg != "" {
		style = style.Background(lipgloss.Color(c.bg))
	}
	if c.bold {
		style = style.Bold(true)
	}
	return style
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

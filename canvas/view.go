package canvas

// View is the pan offset and uniform scale of the rendering surface.
// A zero View behaves like NewView.
type View struct {
	Pan   Point   `json:"pan"`
	Scale float64 `json:"scale"`
}

// NewView returns the unpanned, unzoomed view.
func NewView() View {
	return View{Scale: 1}
}

func (v View) scale() float64 {
	if v.Scale == 0 {
		return 1
	}
	return v.Scale
}

// Transform returns the absolute transform the surface applies to canvas
// pixels: translate(pan)·scale(scale).
func (v View) Transform() Transform {
	return Translation(v.Pan.X, v.Pan.Y).Multiply(Scaling(v.scale()))
}

// ScreenToCanvas maps a screen pointer into canvas pixels.
func (v View) ScreenToCanvas(p Point) Point {
	return ScreenToCanvas(p, v.Pan, v.scale())
}

// CanvasToScreen maps canvas pixels onto the screen.
func (v View) CanvasToScreen(p Point) Point {
	s := v.scale()
	return Point{X: p.X*s + v.Pan.X, Y: p.Y*s + v.Pan.Y}
}

// PanBy shifts the view by a screen-space delta.
func (v View) PanBy(delta Point) View {
	v.Scale = v.scale()
	v.Pan = v.Pan.Add(delta)
	return v
}

// Zoom applies one wheel step about pointer. Negative deltaY (wheel away from
// the user) zooms in; positive zooms out; zero leaves the view untouched.
func (v View) Zoom(pointer Point, deltaY float64) View {
	switch {
	case deltaY < 0:
		return v.ZoomAt(pointer, ZoomStep)
	case deltaY > 0:
		return v.ZoomAt(pointer, 1/ZoomStep)
	default:
		return v
	}
}

// ZoomAt multiplies the scale by factor while keeping the canvas point under
// pointer fixed on screen. Scale is not bounded.
func (v View) ZoomAt(pointer Point, factor float64) View {
	anchor := v.ScreenToCanvas(pointer)
	scale := v.scale() * factor
	return View{
		Scale: scale,
		Pan: Point{
			X: pointer.X - anchor.X*scale,
			Y: pointer.Y - anchor.Y*scale,
		},
	}
}

// Reset returns the identity view.
func (v View) Reset() View {
	return NewView()
}

package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"seatmap-cli/canvas"
	"seatmap-cli/seatmap"
)

type gestureKind int

const (
	gestureNone gestureKind = iota
	gesturePan
	gestureSeat
)

// gesture tracks a left button press until its release. A press that is
// released without leaving its cell counts as a click.
type gesture struct {
	kind   gestureKind
	seatID string
	start  canvas.Point
	last   canvas.Point
	offset canvas.Point
	moved  bool
}

// seatHalfExtent is the hit box around a seat centre: exactly one cell.
var seatHalfExtent = canvas.Size{Width: 0.5, Height: 0.5}

// pointerAt maps a terminal cell to the centre of that cell in surface
// coordinates. Rows above canvasTop belong to the header.
func pointerAt(x, y int) (canvas.Point, bool) {
	if y < canvasTop || x < 0 {
		return canvas.Point{}, false
	}
	return canvas.Point{X: float64(x) + 0.5, Y: float64(y-canvasTop) + 0.5}, true
}

func (m appModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	pointer, inside := pointerAt(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if !inside {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.view = m.view.Zoom(pointer, -1)
		case tea.MouseButtonWheelDown:
			m.view = m.view.Zoom(pointer, 1)
		case tea.MouseButtonLeft:
			m.beginGesture(pointer)
		case tea.MouseButtonRight:
			if id, ok := m.seatAt(pointer); ok {
				m.engine.ContextSeat(id)
				m.keys.sync(m.engine.State())
			}
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.gesture.kind == gestureNone {
			if !inside {
				m.hover = ""
				return m, nil
			}
			m.hover, _ = m.seatAt(pointer)
			return m, nil
		}
		m.moveGesture(pointer)
		return m, nil

	case tea.MouseActionRelease:
		if m.gesture.kind == gestureNone {
			return m, nil
		}
		if inside {
			m.moveGesture(pointer)
		}
		m.endGesture()
		return m, nil
	}
	return m, nil
}

func (m *appModel) beginGesture(pointer canvas.Point) {
	g := gesture{kind: gesturePan, start: pointer, last: pointer}
	if id, ok := m.seatAt(pointer); ok {
		g.seatID = id
		if m.engine.CanDrag() {
			state := m.engine.State()
			seat, _ := state.Seat(id)
			at := seatmap.ScreenPosition(seat, state.Size, m.view.Transform())
			g.kind = gestureSeat
			g.offset = at.Sub(pointer)
		}
	}
	m.gesture = g
}

func (m *appModel) moveGesture(pointer canvas.Point) {
	g := &m.gesture
	if pointer == g.last {
		return
	}
	if g.kind == gesturePan {
		m.view = m.view.PanBy(pointer.Sub(g.last))
	}
	g.last = pointer
	g.moved = g.moved || pointer != g.start
}

func (m *appModel) endGesture() {
	g := m.gesture
	m.gesture = gesture{}

	switch {
	case g.kind == gestureSeat && g.moved:
		// Read the transform at drop time; the view may have zoomed mid-drag.
		m.engine.MoveSeat(g.seatID, g.last.Add(g.offset), m.view.Transform())
	case g.moved:
		m.log.Debug("view panned", slog.Float64("x", m.view.Pan.X), slog.Float64("y", m.view.Pan.Y))
	case g.seatID != "":
		m.engine.ClickSeat(g.seatID)
	default:
		m.engine.ClickCanvas(g.start, m.view.Transform())
	}
	m.keys.sync(m.engine.State())
}

// dragPosition is where the seat being dragged is drawn before it is dropped.
func (m appModel) dragPosition() (string, canvas.Point, bool) {
	if m.gesture.kind != gestureSeat || !m.gesture.moved {
		return "", canvas.Point{}, false
	}
	return m.gesture.seatID, m.gesture.last.Add(m.gesture.offset), true
}

func (m appModel) seatAt(pointer canvas.Point) (string, bool) {
	return seatmap.SeatAt(m.engine.State(), pointer, m.view.Transform(), seatHalfExtent)
}

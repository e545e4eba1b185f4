// Package seatmap owns the seat collection and decides which pointer
// interactions are legal for the current mode and selection mode.
//
// Every operation is synchronous and returns the resulting State. Operations
// whose preconditions do not hold leave the state untouched; none of them
// report errors.
package seatmap

import (
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"seatmap-cli/canvas"
	"seatmap-cli/logger"
	"seatmap-cli/model"
)

// Options configures an Engine.
type Options struct {
	// Prefix is the initial label prefix.
	Prefix string
	// ClampToFrame keeps created and moved seats inside [0,100]%. Off by
	// default: seats dropped outside the floor plan keep their position.
	ClampToFrame bool
	// NewID generates seat ids. Defaults to random UUIDs.
	NewID func() string
	Logger *logger.Logger
	// OnChange receives a snapshot after every effective mutation.
	OnChange func(State)
}

// Engine holds the seat map state. It is not safe for concurrent use; the
// hosting event loop is expected to call it from one goroutine.
type Engine struct {
	state    State
	clamp    bool
	newID    func() string
	log      *logger.Logger
	onChange func(State)
}

// New returns an engine in edit mode with selection mode off.
func New(opts Options) *Engine {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{
		state: State{
			Mode:   ModeEdit,
			Prefix: opts.Prefix,
		},
		clamp:    opts.ClampToFrame,
		newID:    newID,
		log:      log.WithComponent("seatmap"),
		onChange: opts.OnChange,
	}
}

// State returns a snapshot of the current state.
func (e *Engine) State() State {
	return e.state.Clone()
}

func (e *Engine) commit(next State) State {
	e.state = next
	snapshot := next.Clone()
	if e.onChange != nil {
		e.onChange(snapshot.Clone())
	}
	return snapshot
}

func (e *Engine) ignore(op string, reason string, attrs ...any) State {
	e.log.Debug("ignored "+op, append([]any{slog.String("reason", reason)}, attrs...)...)
	return e.state.Clone()
}

// Load replaces the seat collection with seats supplied by the hosting page.
// Selected ids that no longer exist are dropped.
func (e *Engine) Load(seats []model.Seat) State {
	next := e.state.Clone()
	next.Seats = slices.Clone(seats)
	next.Selected = existingIDs(next.Seats, next.Selected)
	return e.commit(next)
}

// SetBackground records the loaded floor plan. Nil unloads it.
func (e *Engine) SetBackground(fp *model.FloorPlan) State {
	next := e.state.Clone()
	if fp == nil {
		next.Background = nil
	} else {
		bg := *fp
		next.Background = &bg
	}
	return e.commit(next)
}

// Resize updates the pixel size of the rendering surface. Stored seat
// percentages are not touched.
func (e *Engine) Resize(size canvas.Size) State {
	if size == e.state.Size {
		return e.state.Clone()
	}
	next := e.state.Clone()
	next.Size = size
	return e.commit(next)
}

// SetPrefix changes the active label prefix. Existing labels are kept.
func (e *Engine) SetPrefix(prefix string) State {
	if prefix == e.state.Prefix {
		return e.state.Clone()
	}
	next := e.state.Clone()
	next.Prefix = prefix
	return e.commit(next)
}

// SetMode switches between edit and view. Selection mode and the selection
// set are left as they are.
func (e *Engine) SetMode(mode Mode) State {
	if mode != ModeEdit && mode != ModeView {
		return e.ignore("set mode", "unknown mode", slog.String("mode", string(mode)))
	}
	if mode == e.state.Mode {
		return e.state.Clone()
	}
	next := e.state.Clone()
	next.Mode = mode
	e.log.Debug("mode changed", slog.String("mode", string(mode)))
	return e.commit(next)
}

// ToggleMode flips edit and view.
func (e *Engine) ToggleMode() State {
	return e.SetMode(e.state.Mode.Toggle())
}

// ToggleSelectionMode turns selection mode on with an empty selection, or off
// clearing the selection.
func (e *Engine) ToggleSelectionMode() State {
	if e.state.SelectionMode {
		next := e.state.Clone()
		next.SelectionMode = false
		next.Selected = nil
		return e.commit(next)
	}
	return e.EnterSelectionMode(nil)
}

// EnterSelectionMode turns selection mode on starting from initial. Unknown
// and duplicate ids are dropped.
func (e *Engine) EnterSelectionMode(initial []string) State {
	next := e.state.Clone()
	next.SelectionMode = true
	next.Selected = existingIDs(next.Seats, initial)
	return e.commit(next)
}

// CreateSeat adds a seat under pointer. abs is the surface's absolute
// transform at the time of the event. Only legal in edit mode, outside
// selection mode, with a floor plan loaded.
func (e *Engine) CreateSeat(pointer canvas.Point, abs canvas.Transform) State {
	if e.state.Mode != ModeEdit {
		return e.ignore("create", "not in edit mode")
	}
	if e.state.SelectionMode {
		return e.ignore("create", "selection mode")
	}
	if !e.state.HasBackground() {
		return e.ignore("create", "no floor plan")
	}
	pct, ok := e.toPercent(pointer, abs)
	if !ok {
		return e.ignore("create", "unresolvable position")
	}

	seat := model.Seat{
		Id:    e.newID(),
		Label: NextLabel(e.state.Seats, e.state.Prefix),
		X:     pct.X,
		Y:     pct.Y,
	}
	next := e.state.Clone()
	next.Seats = append(next.Seats, seat)
	e.log.Debug("seat created", slog.String("id", seat.Id), slog.String("label", seat.Label), slog.Float64("x", seat.X), slog.Float64("y", seat.Y))
	return e.commit(next)
}

// MoveSeat repositions a seat. at is the absolute screen position of the
// dragged element and abs the surface transform read at the same moment; the
// new percent position is abs⁻¹(at).
func (e *Engine) MoveSeat(id string, at canvas.Point, abs canvas.Transform) State {
	if e.state.Mode != ModeEdit {
		return e.ignore("move", "not in edit mode", slog.String("id", id))
	}
	if e.state.SelectionMode {
		return e.ignore("move", "selection mode", slog.String("id", id))
	}
	i := e.state.indexOf(id)
	if i < 0 {
		return e.ignore("move", "unknown seat", slog.String("id", id))
	}
	pct, ok := e.toPercent(at, abs)
	if !ok {
		return e.ignore("move", "unresolvable position", slog.String("id", id))
	}

	next := e.state.Clone()
	next.Seats[i].X = pct.X
	next.Seats[i].Y = pct.Y
	e.log.Debug("seat moved", slog.String("id", id), slog.Float64("x", pct.X), slog.Float64("y", pct.Y))
	return e.commit(next)
}

// DeleteSeat removes a seat. Legal in edit mode, with or without selection mode.
func (e *Engine) DeleteSeat(id string) State {
	if e.state.Mode != ModeEdit {
		return e.ignore("delete", "not in edit mode", slog.String("id", id))
	}
	i := e.state.indexOf(id)
	if i < 0 {
		return e.state.Clone()
	}
	next := e.state.Clone()
	label := next.Seats[i].Label
	next.Seats = slices.Delete(next.Seats, i, i+1)
	next.Selected = slices.DeleteFunc(next.Selected, func(s string) bool { return s == id })
	e.log.Debug("seat deleted", slog.String("id", id), slog.String("label", label))
	return e.commit(next)
}

// ToggleBooked flips the booking flag of one seat. Legal in view mode outside
// selection mode.
func (e *Engine) ToggleBooked(id string) State {
	if e.state.Mode != ModeView {
		return e.ignore("toggle booked", "not in view mode", slog.String("id", id))
	}
	if e.state.SelectionMode {
		return e.ignore("toggle booked", "selection mode", slog.String("id", id))
	}
	i := e.state.indexOf(id)
	if i < 0 {
		return e.state.Clone()
	}
	next := e.state.Clone()
	next.Seats[i].IsBooked = !next.Seats[i].IsBooked
	e.log.Debug("seat booking toggled", slog.String("id", id), slog.Bool("booked", next.Seats[i].IsBooked))
	return e.commit(next)
}

// ToggleSelect adds or removes a seat from the selection set. Legal in
// either mode while selection mode is on.
func (e *Engine) ToggleSelect(id string) State {
	if !e.state.SelectionMode {
		return e.ignore("toggle select", "selection mode off", slog.String("id", id))
	}
	if e.state.indexOf(id) < 0 {
		return e.state.Clone()
	}
	next := e.state.Clone()
	if j := slices.Index(next.Selected, id); j >= 0 {
		next.Selected = slices.Delete(next.Selected, j, j+1)
	} else {
		next.Selected = append(next.Selected, id)
	}
	return e.commit(next)
}

// BatchDelete removes every seat in ids and clears the selection. Edit mode only.
func (e *Engine) BatchDelete(ids []string) State {
	if e.state.Mode != ModeEdit {
		return e.ignore("batch delete", "not in edit mode")
	}
	set := idSet(ids)
	next := e.state.Clone()
	next.Seats = slices.DeleteFunc(next.Seats, func(s model.Seat) bool { return set[s.Id] })
	removed := len(e.state.Seats) - len(next.Seats)
	if removed == 0 && len(next.Selected) == 0 {
		return e.state.Clone()
	}
	next.Selected = nil
	e.log.Debug("seats deleted", slog.Int("count", removed))
	return e.commit(next)
}

// BatchBook marks every seat in ids as booked and clears the selection. View mode only.
func (e *Engine) BatchBook(ids []string) State {
	return e.batchSetBooked(ids, true)
}

// BatchUnbook marks every seat in ids as available and clears the selection. View mode only.
func (e *Engine) BatchUnbook(ids []string) State {
	return e.batchSetBooked(ids, false)
}

func (e *Engine) batchSetBooked(ids []string, booked bool) State {
	op := "batch unbook"
	if booked {
		op = "batch book"
	}
	if e.state.Mode != ModeView {
		return e.ignore(op, "not in view mode")
	}
	set := idSet(ids)
	next := e.state.Clone()
	changed := 0
	for i := range next.Seats {
		if set[next.Seats[i].Id] {
			if next.Seats[i].IsBooked != booked {
				changed++
			}
			next.Seats[i].IsBooked = booked
		}
	}
	if changed == 0 && len(next.Selected) == 0 {
		return e.state.Clone()
	}
	next.Selected = nil
	e.log.Debug(op, slog.Int("changed", changed))
	return e.commit(next)
}

// DeleteSelected applies BatchDelete to the current selection.
func (e *Engine) DeleteSelected() State {
	return e.BatchDelete(slices.Clone(e.state.Selected))
}

// BookSelected applies BatchBook to the current selection.
func (e *Engine) BookSelected() State {
	return e.BatchBook(slices.Clone(e.state.Selected))
}

// UnbookSelected applies BatchUnbook to the current selection.
func (e *Engine) UnbookSelected() State {
	return e.BatchUnbook(slices.Clone(e.state.Selected))
}

// ClickCanvas handles a click on the empty canvas.
func (e *Engine) ClickCanvas(pointer canvas.Point, abs canvas.Transform) State {
	return e.CreateSeat(pointer, abs)
}

// ClickSeat handles a primary click on a seat.
func (e *Engine) ClickSeat(id string) State {
	switch {
	case e.state.SelectionMode:
		return e.ToggleSelect(id)
	case e.state.Mode == ModeView:
		return e.ToggleBooked(id)
	default:
		return e.state.Clone()
	}
}

// ContextSeat handles a secondary (right) click on a seat.
func (e *Engine) ContextSeat(id string) State {
	if e.state.Mode != ModeEdit {
		return e.state.Clone()
	}
	return e.DeleteSeat(id)
}

// CanDrag reports whether seats may currently be dragged.
func (e *Engine) CanDrag() bool {
	return e.state.Mode == ModeEdit && !e.state.SelectionMode
}

func (e *Engine) toPercent(screen canvas.Point, abs canvas.Transform) (canvas.Point, bool) {
	if !e.state.Size.Valid() {
		return canvas.Point{}, false
	}
	inv, ok := abs.Invert()
	if !ok {
		return canvas.Point{}, false
	}
	pct := canvas.ToPercent(inv.Apply(screen), e.state.Size)
	if e.clamp {
		pct = clampPercent(pct)
	}
	return pct, true
}

func clampPercent(p canvas.Point) canvas.Point {
	return canvas.Point{X: min(max(p.X, 0), 100), Y: min(max(p.Y, 0), 100)}
}

func existingIDs(seats []model.Seat, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	known := make(map[string]bool, len(seats))
	for _, seat := range seats {
		known[seat.Id] = true
	}
	var out []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if known[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

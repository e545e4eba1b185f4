package seatmap

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"seatmap-cli/canvas"
	"seatmap-cli/model"
)

var testSize = canvas.Size{Width: 800, Height: 600}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	counter := 0
	e := New(Options{
		Prefix: "A",
		NewID: func() string {
			counter++
			return fmt.Sprintf("seat-%d", counter)
		},
	})
	e.SetBackground(&model.FloorPlan{Name: "hall.png", Width: 1600, Height: 1200})
	e.Resize(testSize)
	return e
}

func identity() canvas.Transform { return canvas.NewView().Transform() }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNew_InitialState(t *testing.T) {
	s := New(Options{Prefix: "A"}).State()
	if s.Mode != ModeEdit || s.SelectionMode {
		t.Fatalf("expected (edit, false), got (%s, %v)", s.Mode, s.SelectionMode)
	}
	if len(s.Seats) != 0 || len(s.Selected) != 0 {
		t.Fatalf("expected empty state, got %+v", s)
	}
}

func TestCreateSeat_ConvertsPointerToPercent(t *testing.T) {
	e := newTestEngine(t)
	s := e.CreateSeat(canvas.Point{X: 200, Y: 150}, identity())
	if len(s.Seats) != 1 {
		t.Fatalf("expected 1 seat, got %d", len(s.Seats))
	}
	seat := s.Seats[0]
	if seat.Label != "A1" || seat.Id != "seat-1" || seat.IsBooked {
		t.Fatalf("unexpected seat: %+v", seat)
	}
	if !approx(seat.X, 25) || !approx(seat.Y, 25) {
		t.Fatalf("expected (25,25), got (%v,%v)", seat.X, seat.Y)
	}
}

func TestCreateSeat_UnderPanAndZoom(t *testing.T) {
	e := newTestEngine(t)
	view := canvas.View{Pan: canvas.Point{X: 100, Y: -50}, Scale: 2}
	// canvas pixel (400,300) is drawn at 400*2+100, 300*2-50
	s := e.CreateSeat(canvas.Point{X: 900, Y: 550}, view.Transform())
	seat := s.Seats[0]
	if !approx(seat.X, 50) || !approx(seat.Y, 50) {
		t.Fatalf("expected (50,50), got (%v,%v)", seat.X, seat.Y)
	}
	if got := ScreenPosition(seat, testSize, view.Transform()); !approx(got.X, 900) || !approx(got.Y, 550) {
		t.Fatalf("expected seat drawn under pointer, got %+v", got)
	}
}

func TestCreateSeat_Gating(t *testing.T) {
	t.Run("view mode", func(t *testing.T) {
		e := newTestEngine(t)
		e.ToggleMode()
		if s := e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity()); len(s.Seats) != 0 {
			t.Fatalf("expected no seat in view mode, got %d", len(s.Seats))
		}
	})
	t.Run("selection mode", func(t *testing.T) {
		e := newTestEngine(t)
		e.ToggleSelectionMode()
		if s := e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity()); len(s.Seats) != 0 {
			t.Fatalf("expected no seat in selection mode, got %d", len(s.Seats))
		}
	})
	t.Run("no background", func(t *testing.T) {
		e := newTestEngine(t)
		e.SetBackground(nil)
		if s := e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity()); len(s.Seats) != 0 {
			t.Fatalf("expected no seat without floor plan, got %d", len(s.Seats))
		}
	})
	t.Run("no size", func(t *testing.T) {
		e := newTestEngine(t)
		e.Resize(canvas.Size{})
		if s := e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity()); len(s.Seats) != 0 {
			t.Fatalf("expected no seat without canvas size, got %d", len(s.Seats))
		}
	})
	t.Run("singular transform", func(t *testing.T) {
		e := newTestEngine(t)
		if s := e.CreateSeat(canvas.Point{X: 10, Y: 10}, canvas.Scaling(0)); len(s.Seats) != 0 {
			t.Fatalf("expected no seat for singular transform, got %d", len(s.Seats))
		}
	})
}

func TestCreateSeat_OutOfFramePolicy(t *testing.T) {
	e := newTestEngine(t)
	s := e.CreateSeat(canvas.Point{X: -80, Y: 660}, identity())
	if !approx(s.Seats[0].X, -10) || !approx(s.Seats[0].Y, 110) {
		t.Fatalf("expected out-of-frame seat to be kept, got %+v", s.Seats[0])
	}

	clamped := New(Options{Prefix: "A", ClampToFrame: true})
	clamped.SetBackground(&model.FloorPlan{Width: 10, Height: 10})
	clamped.Resize(testSize)
	s = clamped.CreateSeat(canvas.Point{X: -80, Y: 660}, identity())
	if s.Seats[0].X != 0 || s.Seats[0].Y != 100 {
		t.Fatalf("expected clamped seat at (0,100), got %+v", s.Seats[0])
	}
}

func TestDeleteFreesNumberWithNewID(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < 4; i++ {
		e.CreateSeat(canvas.Point{X: float64(10 * (i + 1)), Y: 10}, identity())
	}
	s := e.State()
	a3 := s.Seats[2]
	if a3.Label != "A3" {
		t.Fatalf("expected third seat A3, got %q", a3.Label)
	}

	s = e.DeleteSeat(a3.Id)
	if len(s.Seats) != 3 {
		t.Fatalf("expected 3 seats, got %d", len(s.Seats))
	}
	if got := s.NextNumber(); got != 3 {
		t.Fatalf("expected next number 3, got %d", got)
	}

	s = e.CreateSeat(canvas.Point{X: 500, Y: 500}, identity())
	created := s.Seats[len(s.Seats)-1]
	if created.Label != "A3" {
		t.Fatalf("expected reused label A3, got %q", created.Label)
	}
	if created.Id == a3.Id {
		t.Fatalf("expected a fresh id, got %q again", created.Id)
	}

	s = e.CreateSeat(canvas.Point{X: 510, Y: 500}, identity())
	if got := s.Seats[len(s.Seats)-1].Label; got != "A5" {
		t.Fatalf("expected A5, got %q", got)
	}
}

func TestDeleteSeat_Gating(t *testing.T) {
	e := newTestEngine(t)
	s := e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity())
	id := s.Seats[0].Id

	if s := e.DeleteSeat("missing"); len(s.Seats) != 1 {
		t.Fatal("expected unknown id to be a no-op")
	}

	e.ToggleMode()
	if s := e.DeleteSeat(id); len(s.Seats) != 1 {
		t.Fatal("expected delete to be rejected in view mode")
	}

	e.ToggleMode()
	e.ToggleSelectionMode()
	e.ToggleSelect(id)
	s = e.ContextSeat(id)
	if len(s.Seats) != 0 {
		t.Fatal("expected right-click delete to work in edit selection mode")
	}
	if len(s.Selected) != 0 {
		t.Fatalf("expected deleted seat to leave the selection, got %v", s.Selected)
	}
}

func TestMoveSeat(t *testing.T) {
	e := newTestEngine(t)
	s := e.CreateSeat(canvas.Point{X: 80, Y: 60}, identity())
	seat := s.Seats[0]

	view := canvas.View{Pan: canvas.Point{X: 30, Y: 40}, Scale: 1.5}
	// drop the seat at canvas pixel (400,300)
	at := view.CanvasToScreen(canvas.Point{X: 400, Y: 300})
	s = e.MoveSeat(seat.Id, at, view.Transform())
	moved := s.Seats[0]
	if !approx(moved.X, 50) || !approx(moved.Y, 50) {
		t.Fatalf("expected (50,50), got (%v,%v)", moved.X, moved.Y)
	}
	if moved.Id != seat.Id || moved.Label != seat.Label || moved.IsBooked != seat.IsBooked {
		t.Fatalf("expected other fields untouched, got %+v", moved)
	}
}

func TestMoveSeat_RejectedInSelectionModeAndViewMode(t *testing.T) {
	e := newTestEngine(t)
	s := e.CreateSeat(canvas.Point{X: 80, Y: 60}, identity())
	seat := s.Seats[0]

	e.ToggleSelectionMode()
	s = e.MoveSeat(seat.Id, canvas.Point{X: 400, Y: 300}, identity())
	if s.Seats[0].X != seat.X || s.Seats[0].Y != seat.Y {
		t.Fatalf("expected position unchanged in selection mode, got %+v", s.Seats[0])
	}
	if e.CanDrag() {
		t.Fatal("expected drag disabled in selection mode")
	}

	e.ToggleSelectionMode()
	e.ToggleMode()
	s = e.MoveSeat(seat.Id, canvas.Point{X: 400, Y: 300}, identity())
	if s.Seats[0].X != seat.X || s.Seats[0].Y != seat.Y {
		t.Fatalf("expected position unchanged in view mode, got %+v", s.Seats[0])
	}
	if e.CanDrag() {
		t.Fatal("expected drag disabled in view mode")
	}
}

func TestMoveSeat_RepeatedZoomAndDragDoesNotDrift(t *testing.T) {
	e := newTestEngine(t)
	s := e.CreateSeat(canvas.Point{X: 400, Y: 300}, identity())
	id := s.Seats[0].Id

	view := canvas.NewView()
	for i := 0; i < 50; i++ {
		view = view.Zoom(canvas.Point{X: float64(37 * i % 800), Y: float64(53 * i % 600)}, -1)
		view = view.PanBy(canvas.Point{X: 1.5, Y: -0.75})
		// pick the seat up and put it down without moving the pointer
		seat, _ := e.State().Seat(id)
		at := ScreenPosition(seat, testSize, view.Transform())
		s = e.MoveSeat(id, at, view.Transform())
	}
	if math.Abs(s.Seats[0].X-50) > 1e-6 || math.Abs(s.Seats[0].Y-50) > 1e-6 {
		t.Fatalf("expected seat to stay at (50,50), got (%v,%v)", s.Seats[0].X, s.Seats[0].Y)
	}
}

func TestToggleBooked(t *testing.T) {
	e := newTestEngine(t)
	s := e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity())
	id := s.Seats[0].Id

	if s := e.ToggleBooked(id); s.Seats[0].IsBooked {
		t.Fatal("expected toggle booked to be rejected in edit mode")
	}
	e.ToggleMode()
	if s := e.ClickSeat(id); !s.Seats[0].IsBooked {
		t.Fatal("expected click in view mode to book the seat")
	}
	if s := e.ClickSeat(id); s.Seats[0].IsBooked {
		t.Fatal("expected second click to unbook the seat")
	}
	e.ToggleSelectionMode()
	if s := e.ToggleBooked(id); s.Seats[0].IsBooked {
		t.Fatal("expected toggle booked to be rejected in selection mode")
	}
}

func TestToggleSelect_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity())
	s := e.CreateSeat(canvas.Point{X: 20, Y: 10}, identity())
	first, second := s.Seats[0].Id, s.Seats[1].Id

	if s := e.ToggleSelect(first); len(s.Selected) != 0 {
		t.Fatal("expected select to be ignored while selection mode is off")
	}

	e.ToggleSelectionMode()
	e.ToggleSelect(first)
	before := e.State().Selected
	e.ToggleSelect(second)
	s = e.ToggleSelect(second)
	if !slices.Equal(s.Selected, before) {
		t.Fatalf("expected %v, got %v", before, s.Selected)
	}
	if s := e.ToggleSelect("missing"); !slices.Equal(s.Selected, before) {
		t.Fatalf("expected unknown id to be ignored, got %v", s.Selected)
	}
}

func TestSelectionMode_ClearedWhenToggledOff(t *testing.T) {
	e := newTestEngine(t)
	s := e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity())
	id := s.Seats[0].Id

	e.ToggleSelectionMode()
	e.ClickSeat(id)
	if s := e.ToggleMode(); !s.SelectionMode || !s.IsSelected(id) {
		t.Fatalf("expected mode toggle to keep the selection, got %+v", s)
	}
	s = e.ToggleSelectionMode()
	if s.SelectionMode || len(s.Selected) != 0 {
		t.Fatalf("expected selection cleared, got %+v", s)
	}
	s = e.ToggleSelectionMode()
	if !s.SelectionMode || len(s.Selected) != 0 {
		t.Fatalf("expected selection mode on with empty set, got %+v", s)
	}
}

func TestEnterSelectionMode_ExternalSet(t *testing.T) {
	e := newTestEngine(t)
	e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity())
	s := e.EnterSelectionMode([]string{"seat-1", "ghost", "seat-1"})
	if !slices.Equal(s.Selected, []string{"seat-1"}) {
		t.Fatalf("expected [seat-1], got %v", s.Selected)
	}
}

func TestBatchBook_MixedSelection(t *testing.T) {
	e := newTestEngine(t)
	e.Load([]model.Seat{
		{Id: "1", Label: "A1", X: 10, Y: 10, IsBooked: true},
		{Id: "2", Label: "A2", X: 20, Y: 10, IsBooked: false},
	})
	e.ToggleMode()
	s := e.EnterSelectionMode([]string{"1", "2"})

	if got := SelectionStatus(s.Seats, s.Selected); got != StatusMixed {
		t.Fatalf("expected mixed, got %s", got)
	}
	if got := Affordances(s); !slices.Equal(got, []Action{ActionBook, ActionUnbook}) {
		t.Fatalf("expected book and unbook, got %v", got)
	}

	s = e.BookSelected()
	for _, seat := range s.Seats {
		if !seat.IsBooked {
			t.Fatalf("expected every seat booked, got %+v", s.Seats)
		}
	}
	if len(s.Selected) != 0 {
		t.Fatalf("expected selection cleared, got %v", s.Selected)
	}
	if !s.SelectionMode {
		t.Fatal("expected selection mode to stay on after a batch action")
	}
}

func TestBatchUnbook(t *testing.T) {
	e := newTestEngine(t)
	e.Load([]model.Seat{
		{Id: "1", Label: "A1", IsBooked: true},
		{Id: "2", Label: "A2", IsBooked: true},
		{Id: "3", Label: "A3", IsBooked: true},
	})
	e.ToggleMode()
	s := e.EnterSelectionMode([]string{"1", "3"})
	if got := Affordances(s); !slices.Equal(got, []Action{ActionUnbook}) {
		t.Fatalf("expected only unbook, got %v", got)
	}
	s = e.UnbookSelected()
	if s.Seats[0].IsBooked || !s.Seats[1].IsBooked || s.Seats[2].IsBooked {
		t.Fatalf("unexpected booking flags: %+v", s.Seats)
	}
}

func TestBatchActions_ModeGating(t *testing.T) {
	e := newTestEngine(t)
	e.Load([]model.Seat{{Id: "1", Label: "A1"}, {Id: "2", Label: "A2"}})

	if s := e.BatchBook([]string{"1"}); s.Seats[0].IsBooked {
		t.Fatal("expected batch book to be rejected in edit mode")
	}
	e.ToggleMode()
	if s := e.BatchDelete([]string{"1"}); len(s.Seats) != 2 {
		t.Fatal("expected batch delete to be rejected in view mode")
	}
	e.ToggleMode()
	e.EnterSelectionMode([]string{"1", "2"})
	s := e.DeleteSelected()
	if len(s.Seats) != 0 || len(s.Selected) != 0 {
		t.Fatalf("expected all seats deleted and selection cleared, got %+v", s)
	}
}

func TestSelectionStatus(t *testing.T) {
	seats := []model.Seat{{Id: "1", IsBooked: true}, {Id: "2"}, {Id: "3"}}
	cases := []struct {
		ids  []string
		want BatchStatus
	}{
		{nil, StatusNone},
		{[]string{"ghost"}, StatusNone},
		{[]string{"1"}, StatusAllBooked},
		{[]string{"2", "3"}, StatusAllAvailable},
		{[]string{"1", "3"}, StatusMixed},
	}
	for _, tc := range cases {
		if got := SelectionStatus(seats, tc.ids); got != tc.want {
			t.Fatalf("ids %v: expected %s, got %s", tc.ids, tc.want, got)
		}
	}
}

func TestAffordances_EditMode(t *testing.T) {
	s := State{Mode: ModeEdit, Seats: []model.Seat{{Id: "1"}}}
	if got := Affordances(s); len(got) != 0 {
		t.Fatalf("expected nothing for empty selection, got %v", got)
	}
	s.Selected = []string{"1"}
	if !Offers(s, ActionDelete) || Offers(s, ActionBook) {
		t.Fatalf("expected only delete, got %v", Affordances(s))
	}
}

func TestInteractionTable(t *testing.T) {
	type outcome struct {
		canvasCreates bool
		seatToggles   string // "", "select" or "booked"
		canDrag       bool
		contextDelete bool
	}
	cases := []struct {
		mode      Mode
		selection bool
		want      outcome
	}{
		{ModeEdit, false, outcome{canvasCreates: true, canDrag: true, contextDelete: true}},
		{ModeEdit, true, outcome{seatToggles: "select", contextDelete: true}},
		{ModeView, false, outcome{seatToggles: "booked"}},
		{ModeView, true, outcome{seatToggles: "select"}},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%v", tc.mode, tc.selection), func(t *testing.T) {
			e := newTestEngine(t)
			e.Load([]model.Seat{{Id: "x", Label: "A1", X: 50, Y: 50}})
			e.SetMode(tc.mode)
			if tc.selection {
				e.ToggleSelectionMode()
			}

			s := e.ClickCanvas(canvas.Point{X: 10, Y: 10}, identity())
			if created := len(s.Seats) == 2; created != tc.want.canvasCreates {
				t.Fatalf("canvas click created=%v, expected %v", created, tc.want.canvasCreates)
			}
			e.Load([]model.Seat{{Id: "x", Label: "A1", X: 50, Y: 50}})

			s = e.ClickSeat("x")
			got := ""
			if s.IsSelected("x") {
				got = "select"
			} else if s.Seats[0].IsBooked {
				got = "booked"
			}
			if got != tc.want.seatToggles {
				t.Fatalf("seat click toggled %q, expected %q", got, tc.want.seatToggles)
			}

			if e.CanDrag() != tc.want.canDrag {
				t.Fatalf("expected CanDrag %v", tc.want.canDrag)
			}

			s = e.ContextSeat("x")
			if deleted := len(s.Seats) == 0; deleted != tc.want.contextDelete {
				t.Fatalf("right click deleted=%v, expected %v", deleted, tc.want.contextDelete)
			}
		})
	}
}

func TestResize_KeepsPercentages(t *testing.T) {
	e := newTestEngine(t)
	e.CreateSeat(canvas.Point{X: 400, Y: 300}, identity())
	s := e.Resize(canvas.Size{Width: 1000, Height: 200})
	if !approx(s.Seats[0].X, 50) || !approx(s.Seats[0].Y, 50) {
		t.Fatalf("expected percentages untouched, got %+v", s.Seats[0])
	}
	px := ScreenPosition(s.Seats[0], s.Size, identity())
	if !approx(px.X, 500) || !approx(px.Y, 100) {
		t.Fatalf("expected (500,100) after resize, got %+v", px)
	}
}

func TestSetPrefix(t *testing.T) {
	e := newTestEngine(t)
	e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity())
	s := e.SetPrefix("B")
	if s.Seats[0].Label != "A1" {
		t.Fatalf("expected existing label kept, got %q", s.Seats[0].Label)
	}
	s = e.CreateSeat(canvas.Point{X: 20, Y: 10}, identity())
	if got := s.Seats[1].Label; got != "B1" {
		t.Fatalf("expected B1, got %q", got)
	}
}

func TestOnChange_ReceivesFullCollection(t *testing.T) {
	var updates []State
	e := New(Options{Prefix: "A", OnChange: func(s State) { updates = append(updates, s) }})
	e.SetBackground(&model.FloorPlan{Width: 1, Height: 1})
	e.Resize(testSize)
	updates = nil

	e.CreateSeat(canvas.Point{X: 10, Y: 10}, identity())
	e.CreateSeat(canvas.Point{X: 20, Y: 10}, identity())
	e.ToggleMode()
	e.CreateSeat(canvas.Point{X: 30, Y: 10}, identity())

	if len(updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updates))
	}
	if len(updates[1].Seats) != 2 {
		t.Fatalf("expected full collection of 2 seats, got %d", len(updates[1].Seats))
	}
	updates[1].Seats[0].Label = "mutated"
	if e.State().Seats[0].Label == "mutated" {
		t.Fatal("expected snapshots to be independent of engine state")
	}
}

func TestSeatAt_TopmostWins(t *testing.T) {
	s := State{
		Size: testSize,
		Seats: []model.Seat{
			{Id: "under", X: 50, Y: 50},
			{Id: "over", X: 50.1, Y: 50},
			{Id: "far", X: 10, Y: 10},
		},
	}
	view := canvas.View{Pan: canvas.Point{X: 5, Y: 5}, Scale: 1}
	id, ok := SeatAt(s, canvas.Point{X: 405, Y: 305}, view.Transform(), canvas.Size{Width: 2, Height: 1})
	if !ok || id != "over" {
		t.Fatalf("expected over, got %q (%v)", id, ok)
	}
	if _, ok := SeatAt(s, canvas.Point{X: 200, Y: 200}, view.Transform(), canvas.Size{Width: 2, Height: 1}); ok {
		t.Fatal("expected a miss on empty canvas")
	}
}

func TestSeatAt_BoundaryHitsOnlyDrawnCell(t *testing.T) {
	// 50% of 20 lands exactly on pixel 10, which is drawn in cell 10.
	s := State{
		Size:  canvas.Size{Width: 20, Height: 20},
		Seats: []model.Seat{{Id: "edge", X: 50, Y: 50}},
	}
	half := canvas.Size{Width: 0.5, Height: 0.5}
	abs := canvas.Identity()

	if id, ok := SeatAt(s, canvas.Point{X: 10.5, Y: 10.5}, abs, half); !ok || id != "edge" {
		t.Fatalf("expected hit from cell 10, got %q (%v)", id, ok)
	}
	for _, p := range []canvas.Point{{X: 9.5, Y: 10.5}, {X: 10.5, Y: 9.5}} {
		if id, ok := SeatAt(s, p, abs, half); ok {
			t.Fatalf("expected miss at %+v, got %q", p, id)
		}
	}
}

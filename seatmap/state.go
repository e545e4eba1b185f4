package seatmap

import (
	"slices"

	"seatmap-cli/canvas"
	"seatmap-cli/model"
)

// Mode is the top-level interaction mode.
type Mode string

const (
	ModeEdit Mode = "edit"
	ModeView Mode = "view"
)

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeView {
		return ModeEdit
	}
	return ModeView
}

// State is everything the hosting page needs to render the seat map.
// Seats keep creation order; Selected keeps selection order.
type State struct {
	Seats         []model.Seat     `json:"seats"`
	Mode          Mode             `json:"mode"`
	SelectionMode bool             `json:"selectionMode"`
	Selected      []string         `json:"selected"`
	Prefix        string           `json:"prefix"`
	Background    *model.FloorPlan `json:"background,omitempty"`
	Size          canvas.Size      `json:"size"`
}

// Clone returns a deep copy so callers can hold snapshots safely.
func (s State) Clone() State {
	out := s
	out.Seats = slices.Clone(s.Seats)
	out.Selected = slices.Clone(s.Selected)
	if s.Background != nil {
		bg := *s.Background
		out.Background = &bg
	}
	return out
}

// HasBackground reports whether a floor plan with known dimensions is loaded.
func (s State) HasBackground() bool {
	return s.Background != nil && s.Background.Loaded()
}

// Seat looks up a seat by id.
func (s State) Seat(id string) (model.Seat, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Seats[i], true
	}
	return model.Seat{}, false
}

// IsSelected reports whether id is in the selection set.
func (s State) IsSelected(id string) bool {
	return slices.Contains(s.Selected, id)
}

// SelectedSeats returns the selected seats in collection order.
func (s State) SelectedSeats() []model.Seat {
	return seatsIn(s.Seats, s.Selected)
}

// NextNumber is the "next number" hint for the active prefix.
func (s State) NextNumber() int {
	return NextNumber(s.Seats, s.Prefix)
}

// Counts returns the number of booked and available seats.
func (s State) Counts() (booked, available int) {
	for _, seat := range s.Seats {
		if seat.IsBooked {
			booked++
		} else {
			available++
		}
	}
	return booked, available
}

func (s State) indexOf(id string) int {
	return slices.IndexFunc(s.Seats, func(seat model.Seat) bool { return seat.Id == id })
}

func seatsIn(seats []model.Seat, ids []string) []model.Seat {
	if len(ids) == 0 {
		return nil
	}
	set := idSet(ids)
	var out []model.Seat
	for _, seat := range seats {
		if set[seat.Id] {
			out = append(out, seat)
		}
	}
	return out
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

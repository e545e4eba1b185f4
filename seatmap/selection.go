package seatmap

import (
	"slices"

	"seatmap-cli/model"
)

// BatchStatus classifies the booking status of a selection.
type BatchStatus int

const (
	StatusNone BatchStatus = iota
	StatusAllBooked
	StatusAllAvailable
	StatusMixed
)

func (b BatchStatus) String() string {
	switch b {
	case StatusAllBooked:
		return "all booked"
	case StatusAllAvailable:
		return "all available"
	case StatusMixed:
		return "mixed"
	default:
		return "none"
	}
}

// Action is a batch operation offered for the current selection.
type Action string

const (
	ActionDelete Action = "delete"
	ActionBook   Action = "book"
	ActionUnbook Action = "unbook"
)

// SelectionStatus reports whether the seats named by ids are all booked, all
// available or mixed. Ids that match no seat are ignored.
func SelectionStatus(seats []model.Seat, ids []string) BatchStatus {
	selected := seatsIn(seats, ids)
	if len(selected) == 0 {
		return StatusNone
	}
	booked := 0
	for _, seat := range selected {
		if seat.IsBooked {
			booked++
		}
	}
	switch booked {
	case len(selected):
		return StatusAllBooked
	case 0:
		return StatusAllAvailable
	default:
		return StatusMixed
	}
}

// Affordances lists the batch actions the hosting page should offer.
func Affordances(s State) []Action {
	if s.Mode == ModeEdit {
		if len(s.SelectedSeats()) == 0 {
			return nil
		}
		return []Action{ActionDelete}
	}
	switch SelectionStatus(s.Seats, s.Selected) {
	case StatusAllBooked:
		return []Action{ActionUnbook}
	case StatusAllAvailable:
		return []Action{ActionBook}
	case StatusMixed:
		return []Action{ActionBook, ActionUnbook}
	default:
		return nil
	}
}

// Offers reports whether action is currently offered.
func Offers(s State, action Action) bool {
	return slices.Contains(Affordances(s), action)
}

package seatmap

import (
	"seatmap-cli/canvas"
	"seatmap-cli/model"
)

// ScreenPosition returns where a seat is drawn on screen under abs.
func ScreenPosition(seat model.Seat, size canvas.Size, abs canvas.Transform) canvas.Point {
	return abs.Apply(canvas.ToPixel(canvas.Point{X: seat.X, Y: seat.Y}, size))
}

// SeatAt returns the topmost seat whose screen-space box of half extent
// half contains pointer. Later seats are drawn over earlier ones, so the
// search runs backwards. The box is open on its low edges, so a seat that
// sits exactly on a cell boundary is hit only from the cell it is drawn in.
func SeatAt(s State, pointer canvas.Point, abs canvas.Transform, half canvas.Size) (string, bool) {
	if !s.Size.Valid() {
		return "", false
	}
	for i := len(s.Seats) - 1; i >= 0; i-- {
		at := ScreenPosition(s.Seats[i], s.Size, abs)
		if within(pointer.X-at.X, half.Width) && within(pointer.Y-at.Y, half.Height) {
			return s.Seats[i].Id, true
		}
	}
	return "", false
}

func within(d, half float64) bool {
	return d > -half && d <= half
}

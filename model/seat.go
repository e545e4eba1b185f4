package model

// Seat is a numbered seat placed over a floor plan. X and Y are percentages
// of the canvas width and height, independent of pan and zoom.
type Seat struct {
	Id       string  `json:"id"`
	Label    string  `json:"label"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	IsBooked bool    `json:"isBooked"`
}

// Status returns the display status used in reports.
func (s Seat) Status() string {
	if s.IsBooked {
		return "booked"
	}
	return "available"
}

package seatmap

import (
	"strconv"
	"strings"

	"seatmap-cli/model"
)

// NextNumber returns the smallest positive integer not already used by a
// label of the form prefix+N. Labels whose suffix is not a plain decimal
// integer are ignored.
func NextNumber(seats []model.Seat, prefix string) int {
	used := make(map[int]bool, len(seats))
	for _, seat := range seats {
		if !strings.HasPrefix(seat.Label, prefix) {
			continue
		}
		suffix := seat.Label[len(prefix):]
		if suffix == "" || suffix[0] < '0' || suffix[0] > '9' {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			continue
		}
		used[n] = true
	}
	next := 1
	for used[next] {
		next++
	}
	return next
}

// NextLabel returns the label the next created seat receives for prefix.
func NextLabel(seats []model.Seat, prefix string) string {
	return prefix + strconv.Itoa(NextNumber(seats, prefix))
}

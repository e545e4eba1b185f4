package model

// FloorPlan describes the background image a seat layout is drawn over. The
// seat map only needs the pixel dimensions; Source and Format are informative.
type FloorPlan struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Loaded reports whether the floor plan has usable dimensions.
func (f FloorPlan) Loaded() bool {
	return f.Width > 0 && f.Height > 0
}

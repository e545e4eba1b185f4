package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"seatmap-cli/model"
	"seatmap-cli/seatmap"
)

// renderSeatReport prints one row per seat in creation order.
func renderSeatReport(w io.Writer, plan model.FloorPlan, state seatmap.State) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if plan.Name != "" {
		t.SetTitle(fmt.Sprintf("%s (%dx%d)", plan.Name, plan.Width, plan.Height))
	}
	t.AppendHeader(table.Row{"#", "Label", "X %", "Y %", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 20},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	for i, seat := range state.Seats {
		t.AppendRow(table.Row{
			i + 1,
			seat.Label,
			fmt.Sprintf("%.2f", seat.X),
			fmt.Sprintf("%.2f", seat.Y),
			seat.Status(),
		})
	}

	booked, available := state.Counts()
	t.AppendFooter(table.Row{"", "Total", len(state.Seats), "", fmt.Sprintf("%d booked / %d available", booked, available)})
	t.Render()
}

func renderFloorPlan(w io.Writer, plan model.FloorPlan) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendRows([]table.Row{
		{"Name", plan.Name},
		{"Source", plan.Source},
		{"Format", plan.Format},
		{"Size", fmt.Sprintf("%dx%d px", plan.Width, plan.Height)},
	})
	t.Render()
}

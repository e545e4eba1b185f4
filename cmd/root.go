package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"seatmap-cli/config"
	"seatmap-cli/logger"
	"seatmap-cli/model"
	"seatmap-cli/seatmap"
	"seatmap-cli/service"
	"seatmap-cli/store"
	"seatmap-cli/tui"
)

const appName = "seatmap-cli"

type rootOptions struct {
	image     string
	prefix    string
	seats     string
	clamp     bool
	labels    bool
	jsonOut   bool
	noSummary bool
}

// Execute runs the command tree.
func Execute(version, commit string) error {
	return newRootCmd(version, commit).Execute()
}

func newRootCmd(version, commit string) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   appName,
		Short: "Place and book seats on a floor plan from the terminal",
		Long: `Open a floor plan image, click to drop seats on it, drag them around and
switch to view mode to book them. Scroll to zoom, drag the background to pan.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor(cmd, opts)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.image, "image", "i", "", "floor plan image path or http(s) URL")
	flags.StringVarP(&opts.prefix, "prefix", "p", "", "label prefix for new seats")
	flags.StringVar(&opts.seats, "seats", "", "JSON file with seats to start from")
	flags.BoolVar(&opts.clamp, "clamp", false, "keep created and moved seats inside the floor plan")
	flags.BoolVar(&opts.labels, "labels", false, "show seat labels on the canvas")
	flags.BoolVar(&opts.jsonOut, "json", false, "print the final seats as JSON on exit")
	flags.BoolVar(&opts.noSummary, "no-summary", false, "do not print the seat report on exit")

	root.AddCommand(newVersionCmd(version, commit), newInspectCmd(), newRecentCmd())
	return root
}

func newVersionCmd(version, commit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of " + appName,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString(version, commit))
		},
	}
}

func versionString(version, commit string) string {
	s := fmt.Sprintf("%s %s", appName, version)
	if commit != "none" && commit != "" {
		s += fmt.Sprintf(" (%s)", commit)
	}
	return s
}

func runEditor(cmd *cobra.Command, opts *rootOptions) error {
	cfg := config.Load()
	log, err := logger.NewFile(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer log.Close()

	prefs, hasPrefs, err := store.LoadPreferences()
	if err != nil {
		log.WithError(err).Warn("load preferences")
	}

	flags := cmd.Flags()
	prefix := resolvePrefix(flags.Changed("prefix"), opts.prefix, cfg, prefs, hasPrefs)
	clamp := cfg.ClampSeats
	if flags.Changed("clamp") {
		clamp = opts.clamp
	}
	showLabels := prefs.ShowLabels
	if flags.Changed("labels") {
		showLabels = opts.labels
	}
	background := strings.TrimSpace(opts.image)
	if background == "" {
		background = cfg.Background
	}

	engine := seatmap.New(seatmap.Options{
		Prefix:       prefix,
		ClampToFrame: clamp,
		Logger:       log,
		OnChange: func(s seatmap.State) {
			booked, available := s.Counts()
			log.Debug("seat map updated",
				slog.String("mode", string(s.Mode)),
				slog.Bool("selection", s.SelectionMode),
				slog.Int("selected", len(s.Selected)),
				slog.Int("booked", booked),
				slog.Int("available", available),
			)
		},
	})
	if opts.seats != "" {
		seats, err := readSeats(opts.seats)
		if err != nil {
			return err
		}
		engine.Load(seats)
		log.Info("seats loaded", slog.String("path", opts.seats), slog.Int("count", len(seats)))
	}

	client := service.NewClient(&http.Client{Timeout: cfg.HTTPTimeout})
	page := tui.New(tui.Options{
		Engine:     engine,
		Client:     client,
		Logger:     log,
		Background: background,
		ShowLabels: showLabels,
	})

	log.Info("starting editor", slog.String("prefix", prefix), slog.Bool("clamp", clamp), slog.String("background", background))
	final, err := tea.NewProgram(page, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	if err != nil {
		return err
	}

	state := engine.State()
	out := cmd.OutOrStdout()
	switch {
	case opts.jsonOut:
		return writeSeatsJSON(out, state.Seats)
	case opts.noSummary || len(state.Seats) == 0:
		return nil
	}
	plan, _ := tui.FloorPlan(final)
	renderSeatReport(out, plan, state)
	return nil
}

// resolvePrefix applies flag > SEATMAP_PREFIX > saved preference > default.
func resolvePrefix(flagSet bool, flagValue string, cfg *config.Config, prefs store.Preferences, hasPrefs bool) string {
	switch {
	case flagSet:
		return flagValue
	case cfg.PrefixSet:
		return cfg.LabelPrefix
	case hasPrefs:
		return prefs.LabelPrefix
	default:
		return cfg.LabelPrefix
	}
}

func readSeats(path string) ([]model.Seat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seats: %w", err)
	}
	defer f.Close()
	return decodeSeats(f)
}

func decodeSeats(r io.Reader) ([]model.Seat, error) {
	var seats []model.Seat
	if err := json.NewDecoder(r).Decode(&seats); err != nil {
		return nil, fmt.Errorf("decode seats: %w", err)
	}
	seen := make(map[string]bool, len(seats))
	for i, seat := range seats {
		if strings.TrimSpace(seat.Id) == "" {
			return nil, fmt.Errorf("seat %d has no id", i)
		}
		if seen[seat.Id] {
			return nil, fmt.Errorf("duplicate seat id %q", seat.Id)
		}
		seen[seat.Id] = true
	}
	return seats, nil
}

func writeSeatsJSON(w io.Writer, seats []model.Seat) error {
	if seats == nil {
		seats = []model.Seat{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(seats)
}

// errNoSource is returned by commands that need a floor plan argument.
var errNoSource = errors.New("a floor plan path or URL is required")

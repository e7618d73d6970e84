package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-office-scheduling/internal/appointment"
	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
	"github.com/hackgods/clinic-office-scheduling/internal/config"
	"github.com/hackgods/clinic-office-scheduling/internal/db"
	"github.com/hackgods/clinic-office-scheduling/internal/logging"
	"github.com/hackgods/clinic-office-scheduling/internal/schedule"
	"github.com/hackgods/clinic-office-scheduling/internal/validate"
)

func breakCmd() *cobra.Command {
	var date, clock string
	cmd := &cobra.Command{
		Use:   "break",
		Short: "Tell whether a slot falls in a break",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse(clinic.DateLayout, date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s break=%t\n", date, clock, schedule.IsBreakLabel(clock, day))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", time.Now().Format(clinic.DateLayout), "Day, 2006-01-02")
	cmd.Flags().StringVar(&clock, "time", "", "Slot label, 15:04")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func slotsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List the day's grid with breaks marked",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse(clinic.DateLayout, date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			printSlots(cmd.OutOrStdout(), day)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", time.Now().Format(clinic.DateLayout), "Day, 2006-01-02")
	return cmd
}

func printSlots(out io.Writer, day time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tBREAK")
	for _, label := range schedule.SlotLabels() {
		mark := ""
		if schedule.IsBreakLabel(label, day) {
			mark = "pause"
		}
		fmt.Fprintf(w, "%s\t%s\n", label, mark)
	}
	_ = w.Flush()
}

func classifyCmd() *cobra.Command {
	var typ, source, at string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Show the display category of an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Now()
			if at != "" {
				t, err := time.ParseInLocation(clinic.StoredTimeLayout, at, time.Local)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				when = t
			}
			src := clinic.ParseSource(source)
			cat := schedule.Classify(clinic.ParseType(typ), src, schedule.IsPast(when, time.Now()))
			fmt.Fprintf(cmd.OutOrStdout(), "category=%s color=%q channel=%s\n", cat, schedule.Palette(cat), schedule.SourceChannel(src))
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "Consultation type")
	cmd.Flags().StringVar(&source, "source", "", "Booking source")
	cmd.Flags().StringVar(&at, "at", "", "Instant, 2006-01-02T15:04 (default now)")
	return cmd
}

func calendarCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print the calendar between two days from the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := appointment.NewService(store, appointment.NewLocalLocker(), validate.New(), logging.Discard(), cfg)
			view, err := svc.Calendar(ctx, start, end)
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), view)
			return nil
		},
	}
	today := time.Now().Format(clinic.DateLayout)
	cmd.Flags().StringVar(&start, "start", today, "First day, 2006-01-02")
	cmd.Flags().StringVar(&end, "end", today, "Last day, 2006-01-02")
	return cmd
}

func openStore(ctx context.Context, cfg config.Config) (clinic.Store, func(), error) {
	if cfg.StoreBackend != config.BackendPostgres {
		return clinic.NewMemoryStore(), func() {}, nil
	}
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, cfg.Location)
	if err != nil {
		return nil, nil, err
	}
	return clinic.NewPgStore(pool, cfg.Location), pool.Close, nil
}

func printView(out io.Writer, view schedule.View) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	if view.Mode == schedule.ModeDense {
		fmt.Fprintln(w, "DAY\tCOUNT\tTYPES\tPREVIEW")
		for _, d := range view.Summaries {
			types := make([]string, 0, len(d.Breakdown))
			for _, s := range d.Breakdown {
				types = append(types, fmt.Sprintf("%s %d%%", s.Type, s.Percent))
			}
			preview := make([]string, 0, len(d.Preview)+1)
			for _, e := range d.Preview {
				preview = append(preview, e.Time+" "+e.Patient)
			}
			if label := d.OverflowLabel(); label != "" {
				preview = append(preview, label)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", d.Date.Format(clinic.DateLayout), d.Count,
				strings.Join(types, ", "), strings.Join(preview, "; "))
		}
		return
	}

	header := []string{"SLOT"}
	for _, d := range view.Days {
		header = append(header, d.Format("Mon 02/01"))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for i, slot := range view.Slots {
		row := []string{slot}
		for _, cell := range view.Grid[i] {
			text := ""
			if cell.Break {
				text = "pause"
			}
			names := make([]string, 0, len(cell.Appointments))
			for _, e := range cell.Appointments {
				names = append(names, e.Patient)
			}
			if len(names) > 0 {
				text = strings.Join(names, ", ")
			}
			row = append(row, text)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}

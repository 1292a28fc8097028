package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gmatosferreira/gtfsrouter/journey"
	"github.com/gmatosferreira/gtfsrouter/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan <from> <to>",
	Short: "Plans a journey between two stops",
	Args:  cobra.ExactArgs(2),
	RunE:  plan,
}

var (
	planDay          string
	planStartTime    string
	planRoutePattern string
	planByID         bool
	planFixed        bool
	planIncludeIDs   bool
	planMaxTransfers int
	planNoRefine     bool
)

func init() {
	planCmd.Flags().StringVarP(&planDay, "day", "d", "today", "Service day: 1-7 (1=Sunday), a weekday name/prefix, or 'today'")
	planCmd.Flags().StringVarP(&planStartTime, "start-time", "t", "00:00:00", "Earliest departure time, HH:MM:SS")
	planCmd.Flags().StringVarP(&planRoutePattern, "route", "r", "", "Regular expression restricting routes by short name; prefix with '!' to negate")
	planCmd.Flags().BoolVarP(&planByID, "by-id", "", false, "Treat <from>/<to> as stop_ids instead of names")
	planCmd.Flags().BoolVarP(&planFixed, "fixed", "", false, "Match <from>/<to> names literally instead of as regular expressions")
	planCmd.Flags().BoolVarP(&planIncludeIDs, "ids", "", false, "Include GTFS ids alongside names in the output")
	planCmd.Flags().IntVarP(&planMaxTransfers, "max-transfers", "m", -1, "Maximum number of trip changes (-1 for unbounded)")
	planCmd.Flags().BoolVarP(&planNoRefine, "no-refine", "", false, "Return the raw earliest-arrival path instead of the latest feasible departure")
}

func plan(cmd *cobra.Command, args []string) error {
	from, to := args[0], args[1]

	f, err := LoadFeed()
	if err != nil {
		return err
	}

	q := planner.NewQuery()
	q.Day = planDay
	if planDay == "today" {
		q.Day = int(time.Now().Weekday()) + 1
	}
	q.StartTime = planStartTime
	q.RoutePattern = planRoutePattern
	q.FromToAreIDs = planByID
	q.GrepFixed = planFixed
	q.IncludeIDs = planIncludeIDs
	q.EarliestArrival = !planNoRefine
	if planMaxTransfers >= 0 {
		q.MaxTransfers = &planMaxTransfers
	}

	result, err := planner.PlanOne(context.Background(), f, q, from, to)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Println("no journey found")
		return nil
	}

	if result.FromWarning != "" {
		fmt.Printf("warning (from): %s\n", result.FromWarning)
	}
	if result.ToWarning != "" {
		fmt.Printf("warning (to): %s\n", result.ToWarning)
	}

	for _, leg := range result.Legs {
		arrival, departure := journey.FormatLeg(leg)
		line := fmt.Sprintf("%-8s %-8s %s (%s)", departure, arrival, leg.StopName, leg.TripName)
		if leg.RouteName != nil {
			line = fmt.Sprintf("%-8s %-8s %s (%s %s)", departure, arrival, leg.StopName, *leg.RouteName, leg.TripName)
		}
		fmt.Println(line)
	}

	return nil
}

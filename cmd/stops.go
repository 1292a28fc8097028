package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gmatosferreira/gtfsrouter/resolve"
)

var stopsCmd = &cobra.Command{
	Use:   "stops <query>",
	Short: "Resolves a stop name, stop_id, or 'lat,lon' coordinate pair",
	Args:  cobra.ExactArgs(1),
	RunE:  stops,
}

var (
	stopsByID  bool
	stopsFixed bool
)

func init() {
	stopsCmd.Flags().BoolVarP(&stopsByID, "by-id", "", false, "Treat <query> as a stop_id instead of a name")
	stopsCmd.Flags().BoolVarP(&stopsFixed, "fixed", "", false, "Match <query> literally instead of as a regular expression")
}

func stops(cmd *cobra.Command, args []string) error {
	f, err := LoadFeed()
	if err != nil {
		return err
	}

	q := resolve.Query{Text: args[0], ByID: stopsByID, Fixed: stopsFixed}

	if lat, lon, ok := parseLatLon(args[0]); ok {
		q = resolve.Query{Lat: &lat, Lon: &lon}
	}

	result, err := resolve.Resolve(f, q)
	if err != nil {
		return err
	}

	if result.Warning != "" {
		fmt.Printf("warning: %s\n", result.Warning)
	}

	sort.Slice(result.Stops, func(i, j int) bool {
		return result.Stops[i].Name < result.Stops[j].Name
	})

	for _, stop := range result.Stops {
		fmt.Printf("%s: %s (%.6f, %.6f)\n", stop.ID, stop.Name, stop.Lat, stop.Lon)
	}

	return nil
}

// parseLatLon recognises a "<lat>,<lon>" argument as a coordinate
// pair rather than a name or stop_id.
func parseLatLon(arg string) (lat, lon float64, ok bool) {
	parts := strings.SplitN(arg, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}

	return lat, lon, true
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gmatosferreira/gtfsrouter/downloader"
	"github.com/gmatosferreira/gtfsrouter/feed"
	"github.com/gmatosferreira/gtfsrouter/parse"
	"github.com/gmatosferreira/gtfsrouter/storage"
)

var rootCmd = &cobra.Command{
	Use:          "gtfsrouter",
	Short:        "GTFS journey planner",
	Long:         "Plans journeys and resolves stops against a GTFS static feed",
	SilenceUsage: true,
}

var (
	feedURL     string
	feedFile    string
	feedHeaders []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&feedURL, "url", "", "", "GTFS static feed URL")
	rootCmd.PersistentFlags().StringVarP(&feedFile, "file", "", "", "Path to a local GTFS static .zip, used instead of --url")
	rootCmd.PersistentFlags().StringSliceVarP(&feedHeaders, "header", "", []string{}, "HTTP header (key:value) sent when fetching --url")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(stopsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func parseHeaders(headers []string) (map[string]string, error) {
	parsed := map[string]string{}
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("'%s' is not on form <key>:<value>", header)
		}
		parsed[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return parsed, nil
}

// LoadFeed fetches (or reads) the configured GTFS static feed, parses
// it into an in-memory store, and joins it into a feed.Feed.
func LoadFeed() (*feed.Feed, error) {
	buf, err := fetchFeedBytes()
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}

	store := storage.NewMemoryStorage()
	writer, err := store.GetWriter("cli")
	if err != nil {
		return nil, fmt.Errorf("opening feed writer: %w", err)
	}

	if _, err := parse.ParseStatic(writer, buf); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	reader, err := store.GetReader("cli")
	if err != nil {
		return nil, fmt.Errorf("opening feed reader: %w", err)
	}

	return feed.Load(reader)
}

func fetchFeedBytes() ([]byte, error) {
	if feedFile != "" {
		return os.ReadFile(feedFile)
	}

	if feedURL == "" {
		return nil, fmt.Errorf("one of --url or --file is required")
	}

	headers, err := parseHeaders(feedHeaders)
	if err != nil {
		return nil, fmt.Errorf("invalid header: %w", err)
	}

	return downloader.HTTPGet(context.Background(), feedURL, headers, downloader.GetOptions{})
}

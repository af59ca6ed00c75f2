/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/track-recommender/internal/ingest"
)

// populateCmd represents the populate command
var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Adds new candidate tracks from the catalog",
	Long: `Pages through new album releases, takes up to three unseen tracks from
each album and stores them with their audio features as recommendation
candidates.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := populate(cmd.Context(), viper.GetInt("populate.num_tracks"), viper.GetInt("populate.max_pages"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(populateCmd)

	var numTracks int
	populateCmd.Flags().IntVar(&numTracks, "num-tracks", ingest.MaxNumTracks, "Number of new tracks to add, at most 1000")
	viper.BindPFlag("populate.num_tracks", populateCmd.Flags().Lookup("num-tracks"))

	var maxPages int
	populateCmd.Flags().IntVar(&maxPages, "max-pages", 20, "Give up after this many album pages")
	viper.BindPFlag("populate.max_pages", populateCmd.Flags().Lookup("max-pages"))
}

func populate(ctx context.Context, numTracks, maxPages int) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	client, err := newCatalog(logger)
	if err != nil {
		return err
	}
	db, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline := ingest.New(client, db, ingest.Config{
		Market:   viper.GetString("market"),
		MaxPages: maxPages,
	}, logger)
	report, err := pipeline.Populate(ctx, numTracks)
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}

	fmt.Printf("Stored %d of %d requested tracks (%d skipped, %d pages)\n", report.Stored, report.Requested, len(report.Skipped), report.Pages)
	if report.Partial {
		fmt.Println("The catalog ran out of new tracks before the request was met")
	}
	return nil
}

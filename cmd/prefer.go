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

	"github.com/ademuri/track-recommender/internal/ingest"
)

// preferCmd represents the prefer command
var preferCmd = &cobra.Command{
	Use:   "prefer <track-id>...",
	Short: "Marks tracks as preferences",
	Long: `Fetches the given tracks from the catalog and stores them as
preferences. A track already in the candidate pool moves to the preferences.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := prefer(cmd.Context(), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(preferCmd)
}

func prefer(ctx context.Context, ids []string) error {
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

	res, err := ingest.New(client, db, ingest.Config{}, logger).AddTracks(ctx, ids, true)
	if err != nil {
		return fmt.Errorf("prefer: %w", err)
	}
	fmt.Printf("Stored %d preferences\n", res.Stored)
	for _, id := range res.Skipped {
		fmt.Printf("Skipped %s: no metadata or audio features\n", id)
	}
	return nil
}

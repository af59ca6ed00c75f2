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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/track-recommender/internal/search"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Searches the catalog for tracks",
	Long: `Looks up tracks by artist and/or track name. Use the IDs in the
results with the prefer command.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(viper.GetString("search.artist")) == "" && strings.TrimSpace(viper.GetString("search.name")) == "" {
			return fmt.Errorf("at least one of the flags in the group [artist name] is required")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := searchTracks(cmd.Context(), viper.GetString("search.artist"), viper.GetString("search.name"), viper.GetInt("search.num_results"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	var artist string
	searchCmd.Flags().StringVar(&artist, "artist", "", "Artist to search for")
	viper.BindPFlag("search.artist", searchCmd.Flags().Lookup("artist"))

	var name string
	searchCmd.Flags().StringVar(&name, "name", "", "Track name to search for")
	viper.BindPFlag("search.name", searchCmd.Flags().Lookup("name"))

	var numResults int
	searchCmd.Flags().IntVarP(&numResults, "num-results", "n", search.DefaultResults, "Number of results to return, at most 1000")
	viper.BindPFlag("search.num_results", searchCmd.Flags().Lookup("num-results"))
}

func searchTracks(ctx context.Context, artist, name string, n int) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	client, err := newCatalog(logger)
	if err != nil {
		return err
	}

	results, err := search.New(client, viper.GetString("market"), logger).Search(ctx, artist, name, n)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	fmt.Print(searchTable(results))
	return nil
}

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
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/track-recommender/internal/store"
)

// topArtistsCmd represents the top-artists command
var topArtistsCmd = &cobra.Command{
	Use:   "top-artists",
	Short: "Shows which artists dominate the stored tracks",
	Run: func(cmd *cobra.Command, args []string) {
		filter := store.Candidates()
		if viper.GetBool("top_artists.preferences") {
			filter = store.Preferences()
		}
		err := withBackend(cmd.Context(), func(db store.Backend) error {
			counts, err := db.TopArtists(cmd.Context(), filter, viper.GetInt("top_artists.limit"))
			if err != nil {
				return fmt.Errorf("top artists: %w", err)
			}
			fmt.Print(artistTable(counts))
			return nil
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	var preferences bool
	topArtistsCmd.Flags().BoolVar(&preferences, "preferences", false, "Count preference tracks instead of candidates")
	viper.BindPFlag("top_artists.preferences", topArtistsCmd.Flags().Lookup("preferences"))

	var limit int
	topArtistsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of artists to show, 0 for all")
	viper.BindPFlag("top_artists.limit", topArtistsCmd.Flags().Lookup("limit"))
}

func artistTable(counts []store.ArtistCount) Table {
	rows := [][]string{{"Artist", "Tracks"}}
	for _, c := range counts {
		rows = append(rows, []string{c.Artist, strconv.FormatInt(c.Count, 10)})
	}
	return Table{results: rows, summary: fmt.Sprintf("%d artists", len(counts))}
}

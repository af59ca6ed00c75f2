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

	"github.com/ademuri/track-recommender/internal/store"
	"github.com/ademuri/track-recommender/internal/track"
)

// listTracksCmd represents the list-tracks command
var listTracksCmd = &cobra.Command{
	Use:   "list-tracks",
	Short: "Lists stored tracks",
	Run: func(cmd *cobra.Command, args []string) {
		err := withBackend(cmd.Context(), func(db store.Backend) error {
			tracks, err := listTracks(cmd.Context(), db, viper.GetBool("list_tracks.preferences"))
			if err != nil {
				return err
			}
			fmt.Print(trackTable(tracks))
			return nil
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listTracksCmd)

	var preferences bool
	listTracksCmd.Flags().BoolVar(&preferences, "preferences", false, "Only list preference tracks")
	viper.BindPFlag("list_tracks.preferences", listTracksCmd.Flags().Lookup("preferences"))
}

func listTracks(ctx context.Context, db store.Backend, preferencesOnly bool) ([]track.Track, error) {
	filter := store.Filter{}
	if preferencesOnly {
		filter = store.Preferences()
	}
	tracks, err := db.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return tracks, nil
}

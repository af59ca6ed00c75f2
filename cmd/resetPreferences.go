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

	"github.com/ademuri/track-recommender/internal/store"
)

// resetPreferencesCmd represents the reset-preferences command
var resetPreferencesCmd = &cobra.Command{
	Use:   "reset-preferences",
	Short: "Deletes every preference track",
	Long:  `The candidate pool is left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := withBackend(cmd.Context(), func(db store.Backend) error {
			n, err := resetPreferences(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d preferences\n", n)
			return nil
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(resetPreferencesCmd)
}

func resetPreferences(ctx context.Context, db store.Backend) (int64, error) {
	n, err := db.DeleteMany(ctx, store.Preferences())
	if err != nil {
		return 0, fmt.Errorf("reset preferences: %w", err)
	}
	return n, nil
}

// withBackend opens the configured store, runs f and closes the store.
func withBackend(ctx context.Context, f func(store.Backend) error) error {
	db, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return f(db)
}

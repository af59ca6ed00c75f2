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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/track-recommender/internal/store"
)

// listRunsCmd represents the list-runs command
var listRunsCmd = &cobra.Command{
	Use:   "list-runs",
	Short: "Lists recent populate runs",
	Run: func(cmd *cobra.Command, args []string) {
		err := withBackend(cmd.Context(), func(db store.Backend) error {
			runs, err := db.Runs(cmd.Context(), viper.GetInt("list_runs.limit"))
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			fmt.Print(runTable(runs))
			return nil
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listRunsCmd)

	var limit int
	listRunsCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	viper.BindPFlag("list_runs.limit", listRunsCmd.Flags().Lookup("limit"))
}

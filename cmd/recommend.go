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
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/track-recommender/internal/recommend"
	"github.com/ademuri/track-recommender/internal/store"
)

type RecommendConfig struct {
	NumResults int
	Method     recommend.Method
	Dedup      bool
	// ModelPath is the logistic model used by the sequence method.
	ModelPath string
	Seed      uint64
}

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommends candidate tracks similar to your preferences",
	Long: `The similarity method ranks candidates by distance to each preference.
The experimental sequence method scores candidates with a classifier over
your ten most recent preferences and needs --model.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		method, err := recommend.ParseMethod(viper.GetString("recommend.method"))
		if err != nil {
			return err
		}
		if method == recommend.MethodSequence && viper.GetString("recommend.model") == "" {
			return fmt.Errorf("required flag(s) \"model\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		method, _ := recommend.ParseMethod(viper.GetString("recommend.method"))
		seed := uint64(viper.GetInt64("recommend.seed"))
		if !viper.IsSet("recommend.seed") {
			seed = uint64(time.Now().UnixNano())
		}
		config := RecommendConfig{
			NumResults: viper.GetInt("recommend.num_results"),
			Method:     method,
			Dedup:      viper.GetBool("recommend.dedup"),
			ModelPath:  viper.GetString("recommend.model"),
			Seed:       seed,
		}

		logger, err := newLogger()
		if err == nil {
			err = withBackend(cmd.Context(), func(db store.Backend) error {
				recs, err := recommendTracks(cmd.Context(), db, config, logger)
				if err != nil {
					return err
				}
				fmt.Print(recommendationTable(recs, config.Method))
				return nil
			})
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	var numResults int
	recommendCmd.Flags().IntVarP(&numResults, "num-results", "n", recommend.DefaultResults, "Number of recommendations")
	viper.BindPFlag("recommend.num_results", recommendCmd.Flags().Lookup("num-results"))

	var method string
	recommendCmd.Flags().StringVar(&method, "method", string(recommend.MethodSimilarity), "Recommendation method: similarity or sequence")
	viper.BindPFlag("recommend.method", recommendCmd.Flags().Lookup("method"))

	var dedup bool
	recommendCmd.Flags().BoolVar(&dedup, "dedup", false, "List each candidate at most once")
	viper.BindPFlag("recommend.dedup", recommendCmd.Flags().Lookup("dedup"))

	var model string
	recommendCmd.Flags().StringVar(&model, "model", "", "Path to the sequence model weights (JSON)")
	viper.BindPFlag("recommend.model", recommendCmd.Flags().Lookup("model"))

	var seed int64
	recommendCmd.Flags().Int64Var(&seed, "seed", 0, "Shuffle seed for the sequence method (default random)")
	viper.BindPFlag("recommend.seed", recommendCmd.Flags().Lookup("seed"))
}

func newRecommender(config RecommendConfig) (recommend.Recommender, error) {
	switch config.Method {
	case recommend.MethodSequence:
		model, err := recommend.LoadLogisticFile(config.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("loading model: %w", err)
		}
		return recommend.NewSequence(model, config.Seed), nil
	default:
		return recommend.NewSimilarity(recommend.Config{Dedup: config.Dedup}), nil
	}
}

func recommendTracks(ctx context.Context, db store.Backend, config RecommendConfig, logger *log.Logger) ([]recommend.Recommendation, error) {
	r, err := newRecommender(config)
	if err != nil {
		return nil, err
	}
	recs, err := recommend.NewService(db, logger).Recommend(ctx, r, config.NumResults)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return recs, nil
}

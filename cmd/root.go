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

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/track-recommender/internal/catalog"
	"github.com/ademuri/track-recommender/internal/logging"
	"github.com/ademuri/track-recommender/internal/store"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "track-recommender",
	Short: "Recommends tracks based on their audio features",
	Long: `Keeps a pool of candidate tracks pulled from the Spotify catalog and
recommends the ones closest to the tracks you have marked as preferences.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.track-recommender.yaml)")

	var storeKind string
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "sqlite", "Track store backend: sqlite or mongo")
	viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))

	var databasePath string
	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./tracks.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	var mongoURI string
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo_uri", "", "MongoDB connection string (env DATABASE_URI)")
	viper.BindPFlag("mongo_uri", rootCmd.PersistentFlags().Lookup("mongo_uri"))
	viper.BindEnv("mongo_uri", "DATABASE_URI")

	var mongoDatabase string
	rootCmd.PersistentFlags().StringVar(&mongoDatabase, "mongo_database", "tracks", "MongoDB database name")
	viper.BindPFlag("mongo_database", rootCmd.PersistentFlags().Lookup("mongo_database"))

	var clientID string
	rootCmd.PersistentFlags().StringVar(&clientID, "client_id", "", "Spotify client ID (env SPOTIFY_CLIENT_ID)")
	viper.BindPFlag("client_id", rootCmd.PersistentFlags().Lookup("client_id"))
	viper.BindEnv("client_id", "SPOTIFY_CLIENT_ID")

	var clientSecret string
	rootCmd.PersistentFlags().StringVar(&clientSecret, "client_secret", "", "Spotify client secret (env SPOTIFY_CLIENT_SECRET)")
	viper.BindPFlag("client_secret", rootCmd.PersistentFlags().Lookup("client_secret"))
	viper.BindEnv("client_secret", "SPOTIFY_CLIENT_SECRET")

	var market string
	rootCmd.PersistentFlags().StringVar(&market, "market", "US", "Catalog market for album discovery and search")
	viper.BindPFlag("market", rootCmd.PersistentFlags().Lookup("market"))

	var logLevel string
	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "info", "Log level: debug, info, warn or error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))

	var logFormat string
	rootCmd.PersistentFlags().StringVar(&logFormat, "log_format", "text", "Log format: text, json or logfmt")
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log_format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".track-recommender" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".track-recommender")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func newLogger() (*log.Logger, error) {
	return logging.New(os.Stderr, viper.GetString("log_level"), viper.GetString("log_format"))
}

// openBackend opens the track store selected by --store.
func openBackend(ctx context.Context) (store.Backend, error) {
	switch kind := viper.GetString("store"); kind {
	case "", "sqlite":
		db, err := store.New(viper.GetString("database"))
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return db, nil
	case "mongo":
		uri := viper.GetString("mongo_uri")
		if uri == "" {
			return nil, fmt.Errorf("--store=mongo needs --mongo_uri or DATABASE_URI")
		}
		db, err := store.NewMongo(ctx, uri, viper.GetString("mongo_database"))
		if err != nil {
			return nil, fmt.Errorf("connecting to mongo: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store %q (want sqlite or mongo)", kind)
	}
}

// newCatalog builds the Spotify client from the configured credentials.
func newCatalog(logger *log.Logger) (*catalog.HTTPClient, error) {
	id, secret := viper.GetString("client_id"), viper.GetString("client_secret")
	if id == "" || secret == "" {
		return nil, fmt.Errorf("required flag(s) \"client_id\", \"client_secret\" not set")
	}
	return catalog.NewHTTPClient(catalog.Config{
		ClientID:     id,
		ClientSecret: secret,
		Logger:       logger,
	}), nil
}

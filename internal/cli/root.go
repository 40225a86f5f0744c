package cli

import (
	"github.com/spf13/cobra"

	"github.com/cherseta/chersey/internal/config"
	"github.com/cherseta/chersey/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "chersey",
	Short: "Research workspace backend for Cherseta Studio",
	Long:  "Chersey serves research projects, YouTube transcripts, a streaming research chat and the crumbs engagement score.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to chersey.toml (default $CHERSEY_CONFIG or ~/.config/chersey.toml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(xpCmd)
	rootCmd.AddCommand(projectsCmd)
}

// loadConfig resolves the config file from --config or the default location.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

// openDB opens the configured database, falling back to ~/.chersey/chersey.db.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}

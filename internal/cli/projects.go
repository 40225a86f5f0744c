package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects [uid]",
	Short: "List a user's research projects",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjects,
}

func runProjects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	projects, err := db.ListProjects(ctx, args[0])
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	for _, p := range projects {
		fmt.Printf("%s  %s (%d sources)\n", p.ID, p.Name, len(p.Sources))
		for _, s := range p.Sources {
			fmt.Printf("    %s  %s\n", s.Key(), s.Title)
		}
	}
	return nil
}

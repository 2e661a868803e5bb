package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/iep-hero-api/internal/models"
	"github.com/noah-isme/iep-hero-api/internal/repository"
	"github.com/noah-isme/iep-hero-api/internal/service"
)

func newScoreCmd() *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "score <parent-id>",
		Short: "Rank advocates for a parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, advocates, err := loadScoringInput(cmd, args[0], demo)
			if err != nil {
				return err
			}
			return printRanking(cmd.OutOrStdout(), parent, advocates)
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "score against the built-in demo profiles instead of the database")
	return cmd
}

func loadScoringInput(cmd *cobra.Command, parentID string, demo bool) (*models.Profile, []models.Profile, error) {
	if demo {
		var parent *models.Profile
		var advocates []models.Profile
		for _, p := range demoProfiles(time.Now().UTC()) {
			switch {
			case p.ID == parentID:
				parent = p
			case p.Role == models.RoleAdvocate:
				advocates = append(advocates, *p)
			}
		}
		if parent == nil {
			return nil, nil, fmt.Errorf("unknown demo parent %q", parentID)
		}
		return parent, advocates, nil
	}

	_, logr, db, err := environment()
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()
	defer logr.Sync() //nolint:errcheck

	repo := repository.NewProfileRepository(db)
	parent, err := repo.FindByID(cmd.Context(), parentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load parent %s: %w", parentID, err)
	}
	advocates, err := repo.ListAdvocates(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return parent, advocates, nil
}

func printRanking(w io.Writer, parent *models.Profile, advocates []models.Profile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tADVOCATE\tSCORE\tASSIGNED")
	for i, m := range service.RankAdvocates(parent, advocates) {
		assigned := ""
		if m.IsPriority {
			assigned = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i+1, m.Name, m.Score, assigned)
	}
	return tw.Flush()
}

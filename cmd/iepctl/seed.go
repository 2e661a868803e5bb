package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/iep-hero-api/internal/models"
	"github.com/noah-isme/iep-hero-api/internal/repository"
)

type profileUpserter interface {
	Upsert(ctx context.Context, profile *models.Profile) error
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo parents and advocates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, logr, db, err := environment()
			if err != nil {
				return err
			}
			defer db.Close()
			defer logr.Sync() //nolint:errcheck

			n, err := seedProfiles(cmd.Context(), repository.NewProfileRepository(db), demoProfiles(time.Now().UTC()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d profiles\n", n)
			return nil
		},
	}
}

// seedProfiles writes advocates before parents so assignments resolve.
func seedProfiles(ctx context.Context, repo profileUpserter, profiles []*models.Profile) (int, error) {
	ordered := make([]*models.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.Role == models.RoleAdvocate {
			ordered = append(ordered, p)
		}
	}
	for _, p := range profiles {
		if p.Role != models.RoleAdvocate {
			ordered = append(ordered, p)
		}
	}
	for _, p := range ordered {
		if err := repo.Upsert(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(ordered), nil
}

func demoProfiles(now time.Time) []*models.Profile {
	ptr := func(s string) *string { return &s }
	rating := func(r float64) *float64 { return &r }
	profile := func(p models.Profile) *models.Profile {
		p.IsActive = true
		p.CreatedAt = now
		p.UpdatedAt = now
		return &p
	}
	return []*models.Profile{
		profile(models.Profile{
			ID: "advocate_maria", FullName: "Maria Gonzalez", Email: "maria.gonzalez@ieperoo.com",
			Role: models.RoleAdvocate, PlanType: models.PlanAdvocate,
			Specialization: "Autism & Developmental Disabilities", Credentials: "M.Ed., Special Education Advocate",
			Rating: rating(4.9), Experience: "12 years", Availability: models.AvailabilityHigh,
		}),
		profile(models.Profile{
			ID: "advocate_john", FullName: "John Thompson", Email: "john.thompson@ieperoo.com",
			Role: models.RoleAdvocate, PlanType: models.PlanAdvocate,
			Specialization: "IEP Legal Compliance", Credentials: "J.D., Education Law",
			Rating: rating(4.7), Experience: "8 years", Availability: models.AvailabilityMedium,
		}),
		profile(models.Profile{
			ID: "parent_sarah", FullName: "Sarah Johnson", Email: "sarah.johnson@example.com",
			Role: models.RoleParent, PlanType: models.PlanFree, AssignedAdvocateID: ptr("advocate_maria"),
			Children: models.Children{
				{ID: "child_emma", Name: "Emma Johnson", Grade: "3rd"},
				{ID: "child_alex", Name: "Alex Johnson", Grade: "1st"},
			},
		}),
		profile(models.Profile{
			ID: "parent_mike", FullName: "Mike Chen", Email: "mike.chen@example.com",
			Role: models.RoleParent, PlanType: models.PlanHero, AssignedAdvocateID: ptr("advocate_maria"),
			Children: models.Children{{ID: "child_david", Name: "David Chen", Grade: "5th"}},
		}),
		profile(models.Profile{
			ID: "parent_lisa", FullName: "Lisa Rodriguez", Email: "lisa.rodriguez@example.com",
			Role: models.RoleParent, PlanType: models.PlanHero, AssignedAdvocateID: ptr("advocate_john"),
			Children: models.Children{{ID: "child_sofia", Name: "Sofia Rodriguez", Grade: "2nd"}},
		}),
	}
}

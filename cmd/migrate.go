package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/dataset"
	"github.com/spigell/apprenticeship-matcher/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create database tables and optionally seed them from a dataset file",
	Run: func(cmd *cobra.Command, _ []string) {
		runMigrate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("seed", "", "YAML dataset to import after migrating")
}

func runMigrate(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := setup()

	// --dataset selects a read source; migrate always talks to the database.
	config.Dataset = ""

	s, err := openStore(ctx, config)
	if err != nil {
		log.Fatal("opening database", zap.Error(err))
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		log.Fatal("migrating", zap.Error(err))
	}
	log.Info("schema is up to date")

	path := cmd.Flag("seed").Value.String()
	if path == "" {
		return
	}

	ds, err := dataset.Load(path)
	if err != nil {
		log.Fatal("loading seed", zap.Error(err))
	}
	if err := seed(ctx, s, ds); err != nil {
		log.Fatal("seeding", zap.String("path", path), zap.Error(err))
	}
	log.Info("seed imported",
		zap.String("path", path),
		zap.Int("companies", len(ds.Companies)),
		zap.Int("candidates", len(ds.Candidates)),
		zap.Int("openings", len(ds.Openings)),
		zap.Int("applications", len(ds.Applications)),
	)
}

// seed inserts dataset records in dependency order. Applications keep their
// status; accepted ones go through the regular pending to accepted transition.
func seed(ctx context.Context, s *store.Store, ds *dataset.Dataset) error {
	for _, c := range ds.Companies {
		if _, err := s.AddCompany(ctx, c); err != nil {
			return fmt.Errorf("company %q: %w", c.ID, err)
		}
	}
	for _, c := range ds.Candidates {
		if err := s.AddCandidate(ctx, c); err != nil {
			return fmt.Errorf("candidate %q: %w", c.ID, err)
		}
	}
	for _, o := range ds.Openings {
		if _, err := s.AddOpening(ctx, o); err != nil {
			return fmt.Errorf("opening %q: %w", o.ID, err)
		}
	}
	for _, a := range ds.Applications {
		created, err := s.Apply(ctx, a.CandidateID, a.OpeningID)
		if errors.Is(err, store.ErrAlreadyApplied) {
			continue
		}
		if err != nil {
			return fmt.Errorf("application %s/%s: %w", a.CandidateID, a.OpeningID, err)
		}
		if a.Status == apprenticeship.StatusAccepted {
			if _, err := s.AcceptApplication(ctx, created.ID); err != nil {
				return fmt.Errorf("application %s/%s: %w", a.CandidateID, a.OpeningID, err)
			}
		}
	}
	return nil
}

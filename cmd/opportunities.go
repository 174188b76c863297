package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/apprenticeship-matcher/internal/ai"
	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/filtering"
	"github.com/spigell/apprenticeship-matcher/internal/logger"
	"github.com/spigell/apprenticeship-matcher/internal/profile"
	"github.com/spigell/apprenticeship-matcher/internal/report"
	"github.com/spigell/apprenticeship-matcher/internal/store"
)

const (
	PromptDone            = "Done"
	PromptReportByCompany = "Report by company"
	PromptOpeningsToFile  = "Dump openings to file"
)

var errExit = errors.New("exit requested")

var opportunitiesCmd = &cobra.Command{
	Use:   "opportunities",
	Short: "Show openings a candidate can still apply to and apply interactively",
	Run: func(cmd *cobra.Command, _ []string) {
		runOpportunities(cmd)
	},
}

func init() {
	rootCmd.AddCommand(opportunitiesCmd)

	opportunitiesCmd.Flags().StringP("candidate", "c", "", "candidate id")
	opportunitiesCmd.Flags().BoolP("ignore-applied", "f", false, "keep openings the candidate already applied to")
	opportunitiesCmd.Flags().Bool("no-ai", false, "skip the AI review even if it is enabled in the config")
	opportunitiesCmd.Flags().Bool("no-prompt", false, "only print the openings")
}

func runOpportunities(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := setup()

	candidateID, err := requireFlag(cmd.Flag("candidate").Value.String(), "candidate")
	if err != nil {
		log.Fatal("reading flags", zap.Error(err))
	}
	log = log.With(zap.String(logger.FieldCandidateID, candidateID))

	src, closeSource, err := openSource(ctx, config, log)
	if err != nil {
		log.Fatal("opening records", zap.Error(err))
	}
	defer closeSource()

	candidate, err := src.GetCandidate(ctx, candidateID)
	if err != nil {
		log.Fatal("getting candidate", zap.Error(err))
	}

	p := profile.Normalize(*candidate)
	var incomplete *profile.IncompleteProfileError
	if err := p.Check(); errors.As(err, &incomplete) {
		log.Warn("profile is incomplete",
			zap.Strings("missing", incomplete.Missing),
			zap.String("hint", "update preferred locations and skills to see opportunities"),
		)
		return
	}

	openings, err := src.FetchOpenings(ctx)
	if err != nil {
		log.Fatal("fetching openings", zap.Error(err))
	}
	applied, err := src.FetchAppliedOpeningIDs(ctx, candidateID)
	if err != nil {
		log.Fatal("fetching applications", zap.Error(err))
	}

	filterCfg, steps, reviewer := prepareFilters(ctx, cmd, config, log)
	deps := filtering.Deps{
		Logger:    log,
		Candidate: candidate,
		Profile:   p,
		Applied:   applied,
		Reviewer:  reviewer,
	}

	for _, status := range filtering.Describe(steps) {
		log.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	available, assessments, err := filtering.Run(ctx, filterCfg, deps, steps, apprenticeship.NewOpenings(openings))
	if err != nil {
		log.Fatal("filtering failed", zap.Error(err))
	}

	if available.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no openings left after filters"))
		return
	}

	if err := report.WriteOpenings(os.Stdout, available.Values(), assessments); err != nil {
		log.Fatal("printing openings", zap.Error(err))
	}

	if cmd.Flag("no-prompt").Value.String() == "true" {
		return
	}

	s, ok := src.(*store.Store)
	if !ok {
		log.Info("applying is disabled", zap.String("reason", "records come from a dataset file"))
		return
	}

	if err := chooseAndApply(ctx, s, log, candidateID, available); err != nil && !errors.Is(err, errExit) {
		log.Fatal("exiting", zap.Error(err))
	}
}

func prepareFilters(ctx context.Context, cmd *cobra.Command, config *Config, log *zap.Logger) (*filtering.Config, []filtering.Filter, ai.Reviewer) {
	cfg := &filtering.Config{IgnoreApplied: cmd.Flag("ignore-applied").Value.String() == "true"}
	steps := filtering.DefaultSteps()

	if config.AI == nil || !config.AI.Enabled {
		return cfg, steps, nil
	}

	if cmd.Flag("no-ai").Value.String() == "true" {
		filtering.DisableByName(steps, "ai_fit", "disabled via --no-ai")
		return cfg, steps, nil
	}

	cfg.AI = &filtering.AIConfig{
		Enabled:         true,
		MinimumFitScore: config.AI.MinimumFitScore,
	}
	if config.AI.Gemini != nil {
		cfg.AI.Model = config.AI.Gemini.Model
		cfg.AI.MaxLogLength = config.AI.Gemini.MaxLogLength
	}

	reviewer, err := newAIReviewer(ctx, config.AI, log)
	if err != nil {
		log.Warn("skipping AI filter", zap.Error(err))
		filtering.DisableByName(steps, "ai_fit", err.Error())
		return cfg, steps, nil
	}

	return cfg, steps, reviewer
}

func chooseAndApply(ctx context.Context, s *store.Store, log *zap.Logger, candidateID string, openings *apprenticeship.Openings) error {
	for {
		if openings.Len() == 0 {
			log.Info("exiting", zap.String("reason", "applied to every listed opening"))
			return nil
		}

		items := make([]string, 0, openings.Len()+3)
		for _, o := range openings.Items {
			items = append(items, fmt.Sprintf("%s %s / %s / %s / %d", o.ID, o.Specialization, o.CompanyID, o.Location, o.Stipend))
		}
		items = append(items, PromptReportByCompany, PromptOpeningsToFile, PromptDone)

		openingPrompt := promptui.Select{
			Label: "Choose an opening to apply and press ENTER",
			Items: items,
			Size:  10,
		}

		idx, selected, err := openingPrompt.Run()
		if err != nil {
			return err
		}

		if opening := openingAt(openings, idx); opening != nil {
			if err := applyTo(ctx, s, log, candidateID, opening.ID); err != nil {
				return err
			}
			openings.Exclude(map[string]struct{}{opening.ID: {}})
			continue
		}

		switch selected {
		case PromptDone:
			return errExit
		case PromptReportByCompany:
			pretty, _ := json.MarshalIndent(openings.ReportByCompany(), "", "  ")
			log.Info(string(pretty), zap.Strings("companies", openings.Companies()))
		case PromptOpeningsToFile:
			filename, err := openings.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump openings to file: %w", err)
			}
			log.Info("dumping openings to file", zap.String("filename", filename))
		}
	}
}

// openingAt maps a prompt index back to the listed opening. Indexes past the
// openings belong to the menu actions.
func openingAt(openings *apprenticeship.Openings, idx int) *apprenticeship.Opening {
	if idx < 0 || idx >= openings.Len() {
		return nil
	}
	return openings.Items[idx]
}

func applyTo(ctx context.Context, s *store.Store, log *zap.Logger, candidateID, openingID string) error {
	application, err := s.Apply(ctx, candidateID, openingID)
	switch {
	case errors.Is(err, store.ErrAlreadyApplied):
		log.Warn("already applied", zap.String(logger.FieldOpeningID, openingID))
	case err != nil:
		return err
	default:
		log.Info("successfully applied to opening",
			zap.String(logger.FieldOpeningID, openingID),
			zap.String(logger.FieldApplicationID, application.ID),
		)
	}
	return nil
}

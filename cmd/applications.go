package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/logger"
	"github.com/spigell/apprenticeship-matcher/internal/report"
	"github.com/spigell/apprenticeship-matcher/internal/store"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a candidate to an opening",
	Run: func(cmd *cobra.Command, _ []string) {
		runApply(cmd)
	},
}

var applicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "List applications of a candidate or to the openings of a company",
	Run: func(cmd *cobra.Command, _ []string) {
		runApplications(cmd)
	},
}

var acceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Accept a pending application to one of the company's openings",
	Run: func(cmd *cobra.Command, _ []string) {
		runAccept(cmd)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd, applicationsCmd, acceptCmd)

	applyCmd.Flags().StringP("candidate", "c", "", "candidate id")
	applyCmd.Flags().StringP("opening", "o", "", "opening id")

	applicationsCmd.Flags().StringP("candidate", "c", "", "candidate id")
	applicationsCmd.Flags().String("company", "", "company id")
	applicationsCmd.MarkFlagsMutuallyExclusive("candidate", "company")
	applicationsCmd.MarkFlagsOneRequired("candidate", "company")

	acceptCmd.Flags().String("company", "", "company id")
	acceptCmd.Flags().StringP("application", "a", "", "application id (choose interactively when empty)")
	acceptCmd.MarkFlagRequired("company")
}

func runApply(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := setup()

	candidateID, err := requireFlag(cmd.Flag("candidate").Value.String(), "candidate")
	if err != nil {
		log.Fatal("reading flags", zap.Error(err))
	}
	openingID, err := requireFlag(cmd.Flag("opening").Value.String(), "opening")
	if err != nil {
		log.Fatal("reading flags", zap.Error(err))
	}

	s, err := openStore(ctx, config)
	if err != nil {
		log.Fatal("opening database", zap.Error(err))
	}
	defer s.Close()

	application, err := s.Apply(ctx, candidateID, openingID)
	if errors.Is(err, store.ErrAlreadyApplied) {
		log.Warn("already applied",
			zap.String(logger.FieldCandidateID, candidateID),
			zap.String(logger.FieldOpeningID, openingID),
		)
		return
	}
	if err != nil {
		log.Fatal("applying", zap.Error(err))
	}

	log.Info("successfully applied to opening", logger.ApplicationFields(application)...)
}

func runApplications(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := setup()

	candidateID, companyID, err := applicationsScope(cmd.Flag("candidate").Value.String(), cmd.Flag("company").Value.String())
	if err != nil {
		log.Fatal("reading flags", zap.Error(err))
	}

	s, err := openStore(ctx, config)
	if err != nil {
		log.Fatal("opening database", zap.Error(err))
	}
	defer s.Close()

	var apps []apprenticeship.ApplicationDetails
	if candidateID != "" {
		apps, err = s.ListApplicationsByCandidate(ctx, candidateID)
	} else {
		apps, err = s.ListApplicationsByCompany(ctx, companyID)
	}
	if err != nil {
		log.Fatal("listing applications", zap.Error(err))
	}

	if len(apps) == 0 {
		log.Info("no applications found")
		return
	}

	if err := report.WriteApplications(os.Stdout, apps); err != nil {
		log.Fatal("printing applications", zap.Error(err))
	}
}

func runAccept(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := setup()

	companyID, err := requireFlag(cmd.Flag("company").Value.String(), "company")
	if err != nil {
		log.Fatal("reading flags", zap.Error(err))
	}

	s, err := openStore(ctx, config)
	if err != nil {
		log.Fatal("opening database", zap.Error(err))
	}
	defer s.Close()

	apps, err := s.ListApplicationsByCompany(ctx, companyID)
	if err != nil {
		log.Fatal("listing applications", zap.Error(err))
	}

	applicationID := strings.TrimSpace(cmd.Flag("application").Value.String())
	if applicationID == "" {
		applicationID, err = pickPending(apps)
		if errors.Is(err, errExit) {
			log.Info("exiting", zap.String("reason", "no application chosen"))
			return
		}
		if err != nil {
			log.Fatal("choosing application", zap.Error(err))
		}
	} else if !ownsApplication(apps, applicationID) {
		log.Fatal("application does not belong to the company's openings",
			zap.String(logger.FieldApplicationID, applicationID),
			zap.String("company_id", companyID),
		)
	}

	accepted, err := s.AcceptApplication(ctx, applicationID)
	switch {
	case errors.Is(err, store.ErrNotPending):
		log.Warn("application is not pending", zap.String(logger.FieldApplicationID, applicationID), zap.Error(err))
	case err != nil:
		log.Fatal("accepting application", zap.Error(err))
	default:
		log.Info("application accepted", logger.ApplicationFields(accepted)...)
	}
}

func ownsApplication(apps []apprenticeship.ApplicationDetails, id string) bool {
	for _, a := range apps {
		if a.ID == id {
			return true
		}
	}
	return false
}

// applicationsScope returns exactly one non-blank id: a candidate or a company.
func applicationsScope(candidateID, companyID string) (string, string, error) {
	candidateID, companyID = strings.TrimSpace(candidateID), strings.TrimSpace(companyID)
	switch {
	case candidateID == "" && companyID == "":
		return "", "", errors.New("one of --candidate or --company is required")
	case candidateID != "" && companyID != "":
		return "", "", errors.New("--candidate and --company are mutually exclusive")
	}
	return candidateID, companyID, nil
}

func pendingApplications(apps []apprenticeship.ApplicationDetails) []apprenticeship.ApplicationDetails {
	pending := make([]apprenticeship.ApplicationDetails, 0, len(apps))
	for _, a := range apps {
		if a.Status == apprenticeship.StatusPending {
			pending = append(pending, a)
		}
	}
	return pending
}

func pickPending(apps []apprenticeship.ApplicationDetails) (string, error) {
	pending := pendingApplications(apps)
	if len(pending) == 0 {
		return "", errExit
	}

	items := make([]string, 0, len(pending)+1)
	for _, a := range pending {
		items = append(items, fmt.Sprintf("%s (GPA %.2f) / opening %s / %s", a.CandidateName, a.GPA, a.OpeningID, a.Location))
	}
	items = append(items, PromptDone)

	picker := promptui.Select{
		Label: "Choose an application to accept and press ENTER",
		Items: items,
		Size:  10,
	}

	idx, _, err := picker.Run()
	if err != nil {
		return "", err
	}
	if idx >= len(pending) {
		return "", errExit
	}
	return pending[idx].ID, nil
}

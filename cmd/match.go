package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/apprenticeship-matcher/internal/logger"
	"github.com/spigell/apprenticeship-matcher/internal/matching"
	"github.com/spigell/apprenticeship-matcher/internal/report"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Pick the best opening for every candidate",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("policy", "", "ranking policy: priority or weighted")
	matchCmd.Flags().Bool("require-skills", false, "require at least one shared skill between candidate and opening")
	matchCmd.Flags().Int("workers", 0, "number of concurrent workers (default is the number of CPUs)")
	matchCmd.Flags().String("xlsx", "", "also export results to this xlsx file")

	viper.BindPFlag("matching.policy", matchCmd.Flags().Lookup("policy"))
	viper.BindPFlag("matching.require-skill-overlap", matchCmd.Flags().Lookup("require-skills"))
	viper.BindPFlag("matching.workers", matchCmd.Flags().Lookup("workers"))
}

func runMatch(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := setup()

	policy, err := policyFromConfig(config.Matching)
	if err != nil {
		fatalOnDomainError(log, "reading matching policy", err)
	}

	src, closeSource, err := openSource(ctx, config, log)
	if err != nil {
		log.Fatal("opening records", zap.Error(err))
	}
	defer closeSource()

	candidates, err := src.FetchCandidates(ctx)
	if err != nil {
		log.Fatal("fetching candidates", zap.Error(err))
	}
	openings, err := src.FetchOpenings(ctx)
	if err != nil {
		log.Fatal("fetching openings", zap.Error(err))
	}

	log.Info("matching",
		zap.String(logger.FieldPolicy, policy.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("openings", len(openings)),
	)

	started := time.Now()
	results, err := matching.MatchConcurrent(ctx, candidates, openings, policy, config.Matching.Workers)
	if err != nil {
		fatalOnDomainError(log, "matching failed", err)
	}

	for _, r := range results {
		log.Debug("match result", resultFields(r)...)
	}
	log.Info("matching completed",
		zap.Duration("took", time.Since(started)),
		zap.String("summary", matching.Summarize(results).String()),
	)

	if err := report.WriteMatches(os.Stdout, results); err != nil {
		log.Fatal("printing results", zap.Error(err))
	}

	if path := cmd.Flag("xlsx").Value.String(); path != "" {
		saved, err := report.ExportXLSX(path, results, policy)
		if err != nil {
			log.Fatal("exporting results", zap.Error(err))
		}
		log.Info("results exported", zap.String("filename", saved))
	}
}

func resultFields(r matching.Result) []zap.Field {
	fields := logger.StringFields(
		logger.StringField{Key: logger.FieldCandidateID, Value: r.CandidateID},
		logger.StringField{Key: logger.FieldOpeningID, Value: r.OpeningID},
		logger.StringField{Key: logger.FieldReason, Value: r.Reason},
	)
	if r.Matched() {
		fields = append(fields, zap.Int(logger.FieldPriority, r.Priority))
	}
	if r.Score != nil {
		fields = append(fields, zap.Float64(logger.FieldScore, *r.Score))
	}
	return fields
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/apprenticeship-matcher/internal/ai"
	"github.com/spigell/apprenticeship-matcher/internal/ai/gemini"
	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/dataset"
	"github.com/spigell/apprenticeship-matcher/internal/logger"
	"github.com/spigell/apprenticeship-matcher/internal/matching"
	"github.com/spigell/apprenticeship-matcher/internal/secrets"
	"github.com/spigell/apprenticeship-matcher/internal/store"
)

// source is the read side shared by the database and dataset files.
type source interface {
	FetchCandidates(ctx context.Context) ([]apprenticeship.Candidate, error)
	FetchOpenings(ctx context.Context) ([]apprenticeship.Opening, error)
	FetchAppliedOpeningIDs(ctx context.Context, candidateID string) (map[string]struct{}, error)
	GetCandidate(ctx context.Context, id string) (*apprenticeship.Candidate, error)
}

var (
	_ source = (*store.Store)(nil)
	_ source = (*dataset.Dataset)(nil)
)

var errDatasetReadOnly = errors.New("this command needs a database; unset --dataset")

// setup builds the logger and reads the config. Failures are fatal.
func setup() (*zap.Logger, *Config) {
	log, config := newLogger(), mustConfig()
	log.Debug("starting", zap.String("app", app), zap.String("version", version))
	return log, config
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func mustConfig() *Config {
	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}
	if config == nil {
		config = &Config{}
	}
	if config.Database == nil {
		config.Database = &DatabaseConfig{}
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{}
	}
	return config
}

// openSource returns the dataset when one is configured and the database otherwise.
// The returned close function is never nil.
func openSource(ctx context.Context, config *Config, log *zap.Logger) (source, func(), error) {
	if path := strings.TrimSpace(config.Dataset); path != "" {
		ds, err := dataset.Load(path)
		if err != nil {
			return nil, func() {}, err
		}
		log.Info("using dataset file", zap.String("path", path),
			zap.Int("candidates", len(ds.Candidates)),
			zap.Int("openings", len(ds.Openings)),
		)
		return ds, func() {}, nil
	}

	s, err := openStore(ctx, config)
	if err != nil {
		return nil, func() {}, err
	}
	return s, s.Close, nil
}

func openStore(ctx context.Context, config *Config) (*store.Store, error) {
	if strings.TrimSpace(config.Dataset) != "" {
		return nil, errDatasetReadOnly
	}

	dsn, err := secrets.Load(secrets.Source{
		Name:  "database dsn",
		File:  config.Database.DSNFile,
		Env:   "DATABASE_URL",
		Value: config.Database.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set database.dsn, DATABASE_URL or DATABASE_DSN_FILE)", err)
	}

	return store.Connect(ctx, dsn)
}

func policyFromConfig(cfg *MatchingConfig) (matching.Policy, error) {
	kind, err := matching.ParseKind(cfg.Policy)
	if err != nil {
		return matching.Policy{}, err
	}

	policy := matching.Policy{Kind: kind, RequireSkillOverlap: cfg.RequireSkillOverlap}
	if kind == matching.Weighted {
		policy.GPAWeight = cfg.GPAWeight
		policy.LocationWeight = cfg.LocationWeight
		policy.Depth = cfg.Depth
	}
	return policy, nil
}

func newAIReviewer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Reviewer, error) {
	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai review is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	return gemini.NewReviewer(generator, log, minScore, cfg.Gemini.MaxLogLength), nil
}

// requireFlag returns the trimmed value of a string flag or an error naming it.
func requireFlag(value, name string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return value, nil
}

// fatalOnDomainError logs typed errors with their details before exiting.
func fatalOnDomainError(log *zap.Logger, msg string, err error) {
	var (
		validationErr *matching.ValidationError
		configErr     *matching.ConfigurationError
	)
	switch {
	case errors.As(err, &validationErr):
		log.Fatal(msg,
			zap.String("entity", validationErr.Entity),
			zap.String("id", validationErr.ID),
			zap.String("field", validationErr.Field),
			zap.Any("value", validationErr.Value),
			zap.String("rule", validationErr.Rule),
			zap.Error(err),
		)
	case errors.As(err, &configErr):
		log.Fatal(msg,
			zap.String("setting", configErr.Setting),
			zap.String("hint", "check the matching section of the config"),
			zap.Error(err),
		)
	default:
		log.Fatal(msg, zap.Error(err))
	}
}

package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/apprenticeship-matcher/internal/matching"
)

const (
	app       = "apprenticeship-matcher"
	envPrefix = "APPRENTICESHIP"
)

type Config struct {
	Database *DatabaseConfig `mapstructure:"database"`
	// Dataset points to a YAML snapshot used instead of the database.
	Dataset  string          `mapstructure:"dataset"`
	Matching *MatchingConfig `mapstructure:"matching"`
	AI       *AIConfig       `mapstructure:"ai"`
}

type DatabaseConfig struct {
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

type MatchingConfig struct {
	Policy              string  `mapstructure:"policy"`
	RequireSkillOverlap bool    `mapstructure:"require-skill-overlap"`
	GPAWeight           float64 `mapstructure:"gpa-weight"`
	LocationWeight      float64 `mapstructure:"location-weight"`
	Depth               int     `mapstructure:"depth"`
	Workers             int     `mapstructure:"workers"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "apprenticeship-matcher matches students to apprenticeship openings and tracks their applications",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	for key, env := range map[string]string{
		"database.dsn-file":      "DATABASE_DSN_FILE",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is apprenticeship-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("dataset", "", "YAML snapshot to read records from instead of the database")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("dataset", rootCmd.PersistentFlags().Lookup("dataset"))
}

func setDefaults() {
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("matching.policy", string(matching.PriorityOrder))
	viper.SetDefault("matching.require-skill-overlap", false)
	viper.SetDefault("matching.gpa-weight", matching.DefaultGPAWeight)
	viper.SetDefault("matching.location-weight", matching.DefaultLocationWeight)
	viper.SetDefault("matching.depth", matching.DefaultDepth)
	viper.SetDefault("matching.workers", 0)
	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.minimum-fit-score", 0.5)
	viper.SetDefault("ai.gemini.model", "")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// A missing .env file is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless it was asked for explicitly.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

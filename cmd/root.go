package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/odq/triagem/internal/screening"
)

const (
	app       = "triagem"
	envPrefix = "TRIAGEM"
)

type Config struct {
	Mode     string              `mapstructure:"mode"`
	Seed     uint64              `mapstructure:"seed"`
	API      *APIConfig          `mapstructure:"api"`
	Criteria *screening.Criteria `mapstructure:"criteria"`
}

type APIConfig struct {
	URL           string        `mapstructure:"url"`
	Token         string        `mapstructure:"token" json:"-"`
	TokenFile     string        `mapstructure:"token-file"`
	UserAgent     string        `mapstructure:"user-agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ProbeAttempts int           `mapstructure:"probe-attempts"`
	ProbeBackoff  time.Duration `mapstructure:"probe-backoff"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "triagem screens résumés received by email against a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "a config file (default is triagem.yaml in current directory)")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")

	flags.StringP("mode", "m", "fallback", "screening mode: online, fallback or simulate")
	flags.Uint64("seed", 0, "seed for the simulation (0 picks a random one)")
	flags.String("api-url", "", "screening api base url")

	flags.StringP("position", "p", "", "job position description")
	flags.StringSliceP("keywords", "k", nil, "comma separated keywords")
	flags.StringSlice("education", nil, "comma separated education terms")
	flags.StringSlice("excluded", nil, "comma separated terms that disqualify a résumé")
	flags.Int("max-emails", 500, fmt.Sprintf("maximum number of emails to process (%d-%d)", screening.MinEmails, screening.MaxEmails))
	flags.Bool("use-ocr", true, "use OCR for scanned PDFs")
	flags.String("account", "", "mailbox being screened, shown in the log")

	bindFlag("debug", "debug")
	bindFlag("json", "json")
	bindFlag("mode", "mode")
	bindFlag("seed", "seed")
	bindFlag("api.url", "api-url")
	bindFlag("criteria.position", "position")
	bindFlag("criteria.keywords", "keywords")
	bindFlag("criteria.education", "education")
	bindFlag("criteria.excluded", "excluded")
	bindFlag("criteria.max-emails", "max-emails")
	bindFlag("criteria.use-ocr", "use-ocr")
	bindFlag("criteria.account", "account")

	if err := viper.BindEnv("api.token-file", envPrefix+"_TOKEN_FILE"); err != nil {
		log.Fatalf("binding %s_TOKEN_FILE environment variable: %v", envPrefix, err)
	}

	viper.SetDefault("api.timeout", 60*time.Second)
	viper.SetDefault("api.probe-attempts", 1)
	viper.SetDefault("api.probe-backoff", time.Second)
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		log.Fatalf("binding flag %s: %v", flag, err)
	}
}

func initConfig() {
	// A missing .env is fine, values may come from the real environment.
	_ = godotenv.Load()

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

	// Flags alone are enough to run, so only an explicit or broken config is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
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

	if config.API == nil {
		config.API = &APIConfig{}
	}
	if config.Criteria == nil {
		config.Criteria = &screening.Criteria{}
	}
	splitTermStrings(viper.GetViper(), config.Criteria)

	return config, nil
}

// splitTermStrings re-reads term lists that arrived as a single string, as
// they do from TRIAGEM_CRITERIA_* variables, the way the screening form
// splits them.
func splitTermStrings(v *viper.Viper, c *screening.Criteria) {
	lists := []struct {
		key string
		dst *[]string
	}{
		{key: "criteria.keywords", dst: &c.Keywords},
		{key: "criteria.education", dst: &c.EducationTerms},
		{key: "criteria.excluded", dst: &c.ExcludedTerms},
	}

	for _, l := range lists {
		if s, ok := v.Get(l.key).(string); ok {
			*l.dst = screening.SplitTerms(s)
		}
	}
}

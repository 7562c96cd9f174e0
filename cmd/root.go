package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/config"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/logger"
)

const (
	app = config.App
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "aspirations predicts likely career aspirations from a student profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.SetDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is aspirations.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("model", "m", "", "model artifact location, a path or s3://bucket/key")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("model.location", rootCmd.PersistentFlags().Lookup("model"))
}

func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}

	config.BindEnv(viper.GetViper())

	// We can't proceed if the config file parsed with error.
	if err := config.ReadFile(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// setup builds the logger and the typed config every command starts with.
func setup() (*zap.Logger, *config.Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	return logger, cfg
}

package cmd

import (
	"fmt"
	"os"

	"github.com/andrewpaige1/accent-api/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "accent-api",
	Short: "Pronunciation training API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env, err := config.LoadEnvironment()
		if err != nil {
			return err
		}
		if err := config.ConfigureLogging(env.LogLevel, env.LogFormat); err != nil {
			logrus.Warnf("invalid LOG_LEVEL %q, using info", env.LogLevel)
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase connects with the loaded environment and migrates when asked.
func openDatabase(migrate bool) (*gorm.DB, error) {
	db, err := config.Connect(config.Env.DBURL, config.Env.GormLogLevel)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := config.Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

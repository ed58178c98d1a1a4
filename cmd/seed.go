package cmd

import (
	"errors"

	"github.com/andrewpaige1/accent-api/config"
	"github.com/andrewpaige1/accent-api/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo contrasts and minimal pairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.Env.IsDevelopment {
			return errors.New("refusing to seed outside development")
		}
		db, err := openDatabase(true)
		if err != nil {
			return err
		}
		return seed.Run(cmd.Context(), db)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

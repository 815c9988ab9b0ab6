package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/preferences"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Print or change the report color theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(preferences.Light), string(preferences.Dark), "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := getConfig()
		if err != nil {
			log.Fatalf("getting a config: %s", err)
		}

		prefs, err := openPreferences(config, zap.NewNop())
		if err != nil {
			return err
		}

		theme, err := changeTheme(prefs, args)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

// changeTheme applies the requested change and returns the resulting theme.
// Without arguments the stored theme is returned unchanged.
func changeTheme(prefs *preferences.Store, args []string) (preferences.Theme, error) {
	if len(args) == 0 {
		return prefs.Theme(), nil
	}

	if args[0] == "toggle" {
		return prefs.Toggle()
	}

	theme, err := preferences.ParseTheme(args[0])
	if err != nil {
		return "", err
	}

	return theme, prefs.SetTheme(theme)
}

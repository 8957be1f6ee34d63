package commands

import (
	"encoding/json"
	"log/slog"
	"os"

	"gradescrape-backend/lib/configutil"
	"gradescrape-backend/lib/scrapers/gradescope/edit"
	"gradescrape-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	pullCourse     *int64
	pullAssignment *int64
	pullOut        *string

	pushCourse     *int64
	pushAssignment *int64
	pushFile       *string
)

func init() {
	pullCourse = pullCmd.Flags().Int64("course", 0, "The numeric course id.")
	pullAssignment = pullCmd.Flags().Int64("assignment", 0, "The numeric assignment id.")
	pullOut = pullCmd.Flags().String("out", "settings.json5", "Where to write the scraped settings.")
	pullCmd.MarkFlagRequired("course")
	pullCmd.MarkFlagRequired("assignment")
	rootCmd.AddCommand(pullCmd)

	pushCourse = pushCmd.Flags().Int64("course", 0, "The numeric course id.")
	pushAssignment = pushCmd.Flags().Int64("assignment", 0, "The numeric assignment id.")
	pushFile = pushCmd.Flags().String("file", "settings.json5", "The settings file to submit.")
	pushCmd.MarkFlagRequired("course")
	pushCmd.MarkFlagRequired("assignment")
	rootCmd.AddCommand(pushCmd)
}

var pullCmd = &cobra.Command{
	Use:   "pull --course <id> --assignment <id> [--out <path>]",
	Short: "Scrapes an assignment's current settings into an editable file.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		course := edit.NewCourse(createClient(cmd.Context(), cfg), *pullCourse)

		settings, err := course.AutograderAssignment(*pullAssignment).GetSettings(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to scrape settings", err)
		}

		data, err := json.MarshalIndent(settings, "", "    ")
		if err != nil {
			serviceutil.Fatal("failed to marshal settings", err)
		}
		err = os.WriteFile(*pullOut, data, 0644)
		if err != nil {
			serviceutil.Fatal("failed to write settings file", err)
		}

		slog.Info("pulled assignment settings", "out", *pullOut, "title", settings.Title)
	},
}

var pushCmd = &cobra.Command{
	Use:   "push --course <id> --assignment <id> [--file <path>]",
	Short: "Validates a settings file and writes it back to the assignment.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		settings, err := configutil.ReadConfig[edit.Settings](*pushFile)
		if err != nil {
			serviceutil.Fatal("failed to read settings file", err)
		}

		course := edit.NewCourse(createClient(cmd.Context(), cfg), *pushCourse)
		err = course.AutograderAssignment(*pushAssignment).UpdateSettings(cmd.Context(), settings)
		if err != nil {
			serviceutil.Fatal("failed to update settings", err)
		}

		slog.Info("pushed assignment settings", "title", settings.Title)
	},
}

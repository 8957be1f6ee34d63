package commands

import (
	"os"

	"gradescrape-backend/lib/scrapers/gradescope/view"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(coursesCmd)
}

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Prints the courses this account can access.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		client := view.NewClient(createClient(cmd.Context(), cfg))

		courses, err := client.Courses(cmd.Context())
		if err != nil {
			cmd.PrintErrln(err)
			os.Exit(1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Course"})

		for _, c := range courses {
			t.AppendRow(table.Row{c.Id(), c.Name})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

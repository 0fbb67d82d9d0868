package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/khrees2412/pathweiz/internal/tui"
	"github.com/spf13/cobra"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Track progress on a career's milestones",
	Long: `Open the milestone timeline of one of your recommended careers. Select a
milestone and press e to write a progress note, ctrl+s to save it, d to
delete it. Tab switches between careers.`,
	Example: `  pathweiz timeline
  pathweiz timeline --recommendation 42`,
	Annotations: map[string]string{interactiveAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		result, err := a.RequireRecommendations(ctx)
		if err != nil {
			return err
		}

		recs := result.Recommendations
		id, _ := cmd.Flags().GetInt64("recommendation")
		selected, err := recommendationIndex(recs, id)
		if err != nil {
			return err
		}

		model := tui.NewTimelineModel(ctx, tui.TimelineOptions{
			Recommendations: recs,
			Selected:        selected,
			Load:            a.API.Milestones,
			Writer:          a.API,
			Logger:          a.Logger.Named("timeline"),
		})
		if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("timeline screen failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(timelineCmd)
	timelineCmd.Flags().Int64P("recommendation", "r", 0, "Recommendation ID (defaults to the first)")
}

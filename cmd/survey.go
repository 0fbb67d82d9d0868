package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/khrees2412/pathweiz/internal/render"
	"github.com/khrees2412/pathweiz/internal/survey"
	"github.com/khrees2412/pathweiz/internal/tui"
	"github.com/khrees2412/pathweiz/pkg/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Take the career survey",
	Long: `Walk through the career survey. Your answers are sent to the recommendation
service when you submit. Progress is saved as you go; quitting with esc keeps
a draft that the next run resumes.`,
	Example: `  pathweiz survey
  pathweiz survey --restart`,
	Annotations: map[string]string{interactiveAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		session, err := a.RequireSession(ctx)
		if err != nil {
			return err
		}
		userID := session.User.ID
		restart, _ := cmd.Flags().GetBool("restart")

		engine := survey.NewEngine(survey.DefaultCatalog(),
			survey.WithStatus(a.Status),
			survey.WithLogger(a.Logger.Named("survey")))

		if restart {
			if err := a.Store.DeleteDraft(userID); err != nil {
				return fmt.Errorf("failed to discard draft: %w", err)
			}
		} else if draft, err := a.Store.LoadDraft(userID); err != nil {
			a.Logger.Warn("Failed to load survey draft", zap.Error(err))
		} else if draft != nil {
			if err := engine.Restore(draft.Answers, draft.CurrentIndex); err != nil {
				a.Logger.Warn("Ignoring unreadable survey draft", zap.Error(err))
			}
		}

		model := tui.NewSurveyModel(ctx, tui.SurveyOptions{
			Engine: engine,
			Submit: func(ctx context.Context, answers *survey.Answers) error {
				return a.API.SubmitSurvey(ctx, answers)
			},
			SaveDraft: func(answers []byte, index int) error {
				return a.Store.SaveDraft(&models.SurveyDraft{UserID: userID, Answers: answers, CurrentIndex: index})
			},
			Logger: a.Logger.Named("survey"),
		})

		final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if err != nil {
			engine.Close()
			return fmt.Errorf("survey screen failed: %w", err)
		}

		out := cmd.OutOrStdout()
		result := final.(tui.SurveyModel)
		switch {
		case result.Done():
			if err := a.Store.DeleteDraft(userID); err != nil {
				a.Logger.Warn("Failed to delete survey draft", zap.Error(err))
			}
			fmt.Fprintln(out, render.Notice("Survey submitted. Your recommendations are ready.", true))
			fmt.Fprintln(out, "Next: pathweiz dashboard")
		case result.Cancelled():
			fmt.Fprintln(out, "Progress saved. Run 'pathweiz survey' to continue where you left off.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(surveyCmd)
	surveyCmd.Flags().Bool("restart", false, "Discard any saved draft and start over")
}

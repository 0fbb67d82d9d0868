package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/khrees2412/pathweiz/internal/app"
	"github.com/khrees2412/pathweiz/internal/matcher"
	"github.com/khrees2412/pathweiz/internal/render"
	"github.com/khrees2412/pathweiz/pkg/models"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your career recommendations",
	Long: `Show your profile, the careers recommended for you and the action items
suggested for each of them.`,
	Example: `  pathweiz dashboard
  pathweiz dashboard --details
  pathweiz dashboard --search data`,
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
		session := a.Auth.Session()

		details, _ := cmd.Flags().GetBool("details")
		search, _ := cmd.Flags().GetString("search")

		recs := matcher.Filter(result.Recommendations, search)
		items, itemErrs := a.API.ActionItemsFor(ctx, recs)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, render.TitleStyle.Render("Your Profile"))
		fmt.Fprintf(out, "%s %s\n", render.LabelStyle.Render("Name:"), displayName(session.User.Username, session.User.Email))
		fmt.Fprintf(out, "%s %s\n\n", render.LabelStyle.Render("Email:"), session.User.Email)

		fmt.Fprintln(out, render.TitleStyle.Render("Recommended Careers"))
		if len(recs) == 0 {
			fmt.Fprintf(out, "No recommendations match %q\n", search)
			return nil
		}
		printRecommendations(out, recs, items, itemErrs, render.CardOptions{Detailed: details, Search: search})

		fmt.Fprintf(out, "%s %d\n", render.LabelStyle.Render("Total:"), len(recs))
		fmt.Fprintln(out, render.MutedStyle.Render("Track progress with: pathweiz timeline --recommendation <id>"))
		return nil
	},
}

// printRecommendations writes one card per recommendation followed by its
// action items; errs[i] marks a career whose items could not be fetched
func printRecommendations(out io.Writer, recs []*models.Recommendation, items [][]*models.ActionItem, errs []error, opts render.CardOptions) {
	for i, rec := range recs {
		fmt.Fprintln(out, render.Card(rec, opts))
		fmt.Fprintf(out, "%s %s\n", render.LabelStyle.Render("ID:"), strconv.FormatInt(rec.ID, 10))
		if i < len(errs) && errs[i] != nil {
			fmt.Fprintln(out, render.ErrorStyle.Render("Could not load action items for this career"))
		} else if i < len(items) && len(items[i]) > 0 {
			fmt.Fprintln(out, render.LabelStyle.Render("Action items"))
			for _, item := range items[i] {
				fmt.Fprintln(out, "  "+render.ActionItem(item))
			}
		}
		fmt.Fprintln(out)
	}
}

// recommendationIndex finds the recommendation with the given id; id 0
// selects the first one
func recommendationIndex(recs []*models.Recommendation, id int64) (int, error) {
	if id == 0 {
		return 0, nil
	}
	for i, rec := range recs {
		if rec.ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: recommendation %d", app.ErrNotFound, id)
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().Bool("details", false, "Show the full job description and why each career fits you")
	dashboardCmd.Flags().StringP("search", "s", "", "Only show careers whose title or tags match")
}

package cmd

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/khrees2412/pathweiz/internal/explore"
	"github.com/khrees2412/pathweiz/internal/render"
	"github.com/khrees2412/pathweiz/internal/tui"
	"github.com/spf13/cobra"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse careers recommended to other users",
	Example: `  pathweiz explore
  pathweiz explore --plain --search nurse`,
	Annotations: map[string]string{interactiveAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		pager := explore.NewPager(a.API, a.Config.ExplorePageSize, a.Logger.Named("explore"))
		defer pager.Close()

		search, _ := cmd.Flags().GetString("search")
		plain, _ := cmd.Flags().GetBool("plain")
		if !plain {
			model := tui.NewExploreModel(ctx, pager)
			if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
				return fmt.Errorf("explore screen failed: %w", err)
			}
			return nil
		}

		pages, _ := cmd.Flags().GetInt("pages")
		return printExplore(ctx, cmd.OutOrStdout(), pager, search, pages)
	},
}

// printExplore loads up to pages pages and prints the matching cards. A page
// that fails to load ends the listing with an error line after whatever was
// already loaded; the command fails only when nothing could be loaded.
func printExplore(ctx context.Context, out io.Writer, pager *explore.Pager, search string, pages int) error {
	pager.SetSearch(search)
	var loadErr error
	for i := 0; i < pages && pager.HasMore(); i++ {
		if loadErr = pager.LoadMore(ctx); loadErr != nil {
			break
		}
	}
	if loadErr != nil && len(pager.Items()) == 0 {
		return loadErr
	}

	fmt.Fprintln(out, render.TitleStyle.Render("Explore Careers"))
	visible := pager.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(out, "No recommendations to show.")
	}
	for _, rec := range visible {
		fmt.Fprintln(out, render.Card(rec, render.CardOptions{Search: search, ColorOf: pager.TagColor}))
	}
	switch {
	case loadErr != nil:
		fmt.Fprintln(out, render.ErrorStyle.Render(fmt.Sprintf("Could not load more recommendations: %v", loadErr)))
	case pager.HasMore():
		fmt.Fprintln(out, render.MutedStyle.Render("More available: pass --pages to load further"))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringP("search", "s", "", "Filter by title or tag (with --plain)")
	exploreCmd.Flags().Bool("plain", false, "Print instead of opening the interactive browser")
	exploreCmd.Flags().Int("pages", 1, "Pages to load (with --plain)")
}

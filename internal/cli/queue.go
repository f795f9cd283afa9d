package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ricirt/devlog-poster/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	pendingStyle = cellStyle.Foreground(lipgloss.Color("#E5C07B"))
	postedStyle  = cellStyle.Foreground(lipgloss.Color("#98C379"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

const statusColumn = 1

func newQueueCommand(root *rootOptions) *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show queued work items",
		Long: `Print queue counts and the work items in the order they will be posted.

Example:
  devlog queue --status pending --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.build(cmd.Context(), root.options())
			if err != nil {
				return err
			}
			defer app.Close()

			filter := domain.ListFilter{Limit: limit}
			if status != "" {
				st := domain.Status(status)
				filter.Status = &st
			}

			stats, err := app.Queue.Stats(cmd.Context())
			if err != nil {
				return err
			}
			items, err := app.Queue.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d pending · %d posted", stats.Pending, stats.Posted)))
			if len(items) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No work items."))
				return nil
			}
			fmt.Fprintln(out, renderItems(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show pending or posted items")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of items (0 for all)")
	return cmd
}

// renderItems draws work items as a bordered table.
func renderItems(items []*domain.WorkItem) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		posted := ""
		if it.PostedAt != nil {
			posted = it.PostedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.Itoa(it.Sequence),
			string(it.Status),
			it.Phase,
			truncate(it.Topic, 48),
			posted,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("DAY", "STATUS", "PHASE", "TOPIC", "POSTED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == statusColumn && row >= 0 && row < len(rows) && rows[row][col] == string(domain.StatusPosted):
				return postedStyle
			case col == statusColumn:
				return pendingStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

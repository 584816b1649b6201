package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"folio/internal/media"
	"folio/internal/works"
)

var flagWorksJSON bool

var worksCmd = &cobra.Command{
	Use:   "works [slug]",
	Short: "List portfolio works, or show one work and its embeds",
	Args:  cobra.MaximumNArgs(1),
	RunE:  worksRun,
}

func init() {
	worksCmd.Flags().BoolVarP(&flagWorksJSON, "json", "j", false, "Output as JSON")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true)
)

func worksRun(cmd *cobra.Command, args []string) error {
	catalog, err := newCatalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		return showWork(out, catalog, args[0])
	}

	list, err := catalog.All()
	if err != nil {
		return fmt.Errorf("loading works: %w", err)
	}
	debugf("loaded %d works from %s", len(list), catalog.Dir())

	if flagWorksJSON {
		for i := range list {
			list[i].Content = ""
		}
		return writeJSON(out, list)
	}

	if len(list) == 0 {
		fmt.Fprintln(out, "No works found.")
		return nil
	}

	if isTerminal(out) {
		fmt.Fprintln(out, worksTable(list))
		return nil
	}
	for _, w := range list {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", w.Slug, formatDate(w), w.Title, strings.Join(w.Tags, ","))
	}
	return nil
}

func showWork(out io.Writer, catalog *works.Catalog, slug string) error {
	w, err := catalog.Get(slug)
	if err != nil {
		if errors.Is(err, works.ErrNotFound) {
			return fmt.Errorf("work %q not found in %s", slug, catalog.Dir())
		}
		return err
	}
	embeds := works.EmbedLinks(w.Content)

	if flagWorksJSON {
		if embeds == nil {
			embeds = []string{}
		}
		return writeJSON(out, map[string]any{"work": w, "embeds": embeds})
	}

	label := func(s string) string { return s }
	if isTerminal(out) {
		label = func(s string) string { return labelStyle.Render(s) }
	}

	fmt.Fprintf(out, "%s %s\n", label("Title:"), w.Title)
	fmt.Fprintf(out, "%s %s\n", label("Date:"), formatDate(*w))
	if len(w.Tags) > 0 {
		fmt.Fprintf(out, "%s %s\n", label("Tags:"), strings.Join(w.Tags, ", "))
	}
	if w.Summary != "" {
		fmt.Fprintf(out, "%s %s\n", label("Summary:"), w.Summary)
	}
	for _, e := range embeds {
		fmt.Fprintf(out, "%s %s\n", label("Embed:"), e)
	}
	return nil
}

func worksTable(list []media.Work) string {
	rows := make([][]string, len(list))
	for i, w := range list {
		rows[i] = []string{w.Slug, formatDate(w), w.Title, strings.Join(w.Tags, ", ")}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers("SLUG", "DATE", "TITLE", "TAGS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3:
				return dimStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func formatDate(w media.Work) string {
	if w.Year == 0 {
		return "-"
	}
	if w.Month == 0 {
		return strconv.Itoa(w.Year)
	}
	return fmt.Sprintf("%d-%02d", w.Year, w.Month)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isTerminal reports whether out is an interactive terminal.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

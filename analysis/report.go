package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/brensch/shottree/decisiontree"
	"github.com/brensch/shottree/taxonomy"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	bestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	worstStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Report renders a result as a plain table of leaf-pairs followed by the best
// and worst paths. Path values are named with tax when it is non-nil.
func Report(w io.Writer, res *Result, tax *taxonomy.Taxonomy) error {
	_, err := io.WriteString(w, RenderReport(res, tax))
	return err
}

// RenderReport is Report into a string.
func RenderReport(res *Result, tax *taxonomy.Taxonomy) string {
	p := message.NewPrinter(language.English)
	describe := func(path []decisiontree.Value) string {
		if tax != nil {
			return tax.Describe(path)
		}
		parts := make([]string, len(path))
		for i, v := range path {
			parts[i] = v.String()
		}
		return strings.Join(parts, ", ")
	}

	pairs := res.Tree.LeafPairs()
	rows := make([]string, len(pairs))
	width := len("PATH")
	for i, lp := range pairs {
		rows[i] = describe(lp.Path)
		width = max(width, len(rows[i]))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(res.Subject))
	fmt.Fprintf(&b, "  run %s\n", res.RunID)
	b.WriteString(p.Sprintf("ingested %d  dropped %d  unclassified %d\n\n",
		res.Ingested, res.Dropped, res.Unclassified))

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s  %8s  %8s  %7s", width, "PATH", "MADE", "MISSED", "PCT")))
	b.WriteByte('\n')
	for i, lp := range pairs {
		fmt.Fprintf(&b, "%-*s  ", width, rows[i])
		b.WriteString(p.Sprintf("%8d  %8d  %7.2f\n", lp.Made, lp.Missed, lp.Percent()))
	}
	b.WriteByte('\n')

	b.WriteString(bestStyle.Render("best "))
	b.WriteString(p.Sprintf(" %s  %.2f%% (%d/%d)\n", describe(res.Best.Path), res.Best.Percent(), res.Best.Made, res.Best.Total()))
	b.WriteString(worstStyle.Render("worst"))
	b.WriteString(p.Sprintf(" %s  %.2f%% (%d/%d)\n", describe(res.Worst.Path), res.Worst.Percent(), res.Worst.Made, res.Worst.Total()))
	return b.String()
}

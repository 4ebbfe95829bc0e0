package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	teamWidth = 24
	pickWidth = 6
)

// AllPicks prints P1..maxPick for every team, fewest projected wins
// first. maxPick is clamped to the number of picks in the draft.
func AllPicks(w io.Writer, doc *Document, maxPick int) error {
	maxPick = max(1, min(maxPick, len(doc.Teams)))

	var b strings.Builder
	fmt.Fprintf(&b, "Simulations: %d\n", doc.Trials)
	b.WriteString("Columns show probability of landing each pick after season + lottery simulation.\n\n")

	t := newTable(append([]int{teamWidth, 8}, repeat(pickWidth, maxPick)...))
	cols := []string{"Team", "AvgWins"}
	for p := 1; p <= maxPick; p++ {
		cols = append(cols, "P"+strconv.Itoa(p))
	}
	t.header(&b, cols)

	for _, s := range doc.Teams {
		row := []string{s.Team, fmt.Sprintf("%.2f", s.AverageWins)}
		for _, p := range s.PickProbabilities[:maxPick] {
			row = append(row, pct(p))
		}
		t.row(&b, row)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// LotteryTop4 prints the lottery-bound teams (worst by projected wins)
// with their current record, Pythagorean expectation, projected final
// record and odds of each drawn pick.
func LotteryTop4(w io.Writer, doc *Document) error {
	top := doc.Rules.TopPicks

	var b strings.Builder
	fmt.Fprintf(&b, "Season: %s\n", doc.Season)
	fmt.Fprintf(&b, "Generated (UTC): %s\n", doc.Generated.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Simulations: %d\n", doc.Trials)
	fmt.Fprintf(&b, "Pythagorean exponent: %s\n\n", formatExponent(doc.Exponent))
	fmt.Fprintf(&b, "Simulated lottery teams: projected final record and odds of landing a top-%d pick\n\n", top)

	t := newTable(append([]int{teamWidth, 9, 7, 12}, repeat(pickWidth, top+1)...))
	cols := []string{"Team", "Now", "Pyth%", "ProjFinal"}
	for p := 1; p <= top; p++ {
		cols = append(cols, "P"+strconv.Itoa(p))
	}
	t.header(&b, append(cols, "Top"+strconv.Itoa(top)))

	for _, s := range Worst(doc.Teams, doc.Rules.LotteryTeams) {
		row := []string{
			s.Team,
			fmt.Sprintf("%d-%d", s.Wins, s.Losses),
			fmt.Sprintf("%.3f", s.WinProbability),
			fmt.Sprintf("%.2f-%.2f", s.AverageWins, s.AverageLosses),
		}
		var sum float64
		for _, p := range s.PickProbabilities[:top] {
			row = append(row, pct(p))
			sum += p
		}
		t.row(&b, append(row, pct(sum)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// table left-aligns each cell to its column width, separated by a space.
type table struct{ widths []int }

func newTable(widths []int) table { return table{widths: widths} }

func (t table) line(cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprintf("%-*s", t.widths[i], c)
	}
	return strings.Join(parts, " ")
}

func (t table) header(b *strings.Builder, cols []string) {
	h := t.line(cols)
	b.WriteString(h + "\n")
	b.WriteString(strings.Repeat("-", len(h)) + "\n")
}

func (t table) row(b *strings.Builder, cells []string) {
	b.WriteString(t.line(cells) + "\n")
}

func pct(p float64) string { return fmt.Sprintf("%5.2f%%", 100*p) }

// formatExponent prints whole exponents with one decimal ("14.0").
func formatExponent(k float64) string {
	if k == float64(int64(k)) {
		return strconv.FormatFloat(k, 'f', 1, 64)
	}
	return strconv.FormatFloat(k, 'f', -1, 64)
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

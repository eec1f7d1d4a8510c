// Package render produces the daily picks card.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"

	"github.com/floorgang/floorscanner/internal/models"
)

const cardRule = "======================================================================"

// CardWriter renders a scan's picks as a text card.
type CardWriter struct {
	out io.Writer
}

// NewCardWriter creates a card writer over w.
func NewCardWriter(w io.Writer) *CardWriter {
	return &CardWriter{out: w}
}

// Render writes the full card: header, pick table and run summary. Picks are
// printed in the order given, which the scanner has already ranked by price.
func (c *CardWriter) Render(run *models.ScanRun, picks []models.Pick) {
	fmt.Fprintln(c.out, cardRule)
	fmt.Fprintf(c.out, "FLOOR SCANNER  %s  %s\n", run.Sport, run.ScanDate.Format("2006-01-02"))
	fmt.Fprintln(c.out, cardRule)
	fmt.Fprintln(c.out)

	if len(picks) == 0 {
		fmt.Fprintln(c.out, "No picks cleared the scan today.")
		fmt.Fprintln(c.out)
		c.renderSummary(run)
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Pick", "Stat", "Side", "Line", "Odds", "Bound", "Games", "Record")

	for i, pick := range picks {
		bound := "-"
		if v, ok := pick.Bound(); ok {
			bound = fmt.Sprintf("%g", v)
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			entityLabel(pick),
			statLabel(pick),
			sideLabel(pick.Side),
			fmt.Sprintf("%g", pick.Line),
			models.FormatAmerican(pick.Odds),
			bound,
			fmt.Sprintf("%d", pick.GamesAnalyzed),
			pick.HitRate,
		)
	}
	table.Render()

	fmt.Fprintln(c.out)
	c.renderSummary(run)
}

func (c *CardWriter) renderSummary(run *models.ScanRun) {
	fmt.Fprintf(c.out, "Picks: %d (%d player, %d team)  Analyzed: %d  Skipped: %d\n",
		run.TotalPicks, run.PlayerPicks, run.TeamPicks, run.EntitiesAnalyzed, run.EntitiesSkipped)
	if run.APIRequestsRemaining != nil {
		fmt.Fprintf(c.out, "API requests remaining: %d\n", *run.APIRequestsRemaining)
	}
}

func entityLabel(pick models.Pick) string {
	name := pick.EntityName
	if pick.Kind == models.EntityPlayer && pick.TeamAbbr != nil {
		name = fmt.Sprintf("%s (%s)", name, *pick.TeamAbbr)
	}
	return truncate(name, 32)
}

func statLabel(pick models.Pick) string {
	if pick.Kind == models.EntityTeam {
		return "Total"
	}
	return string(pick.Stat)
}

func sideLabel(side models.BetSide) string {
	if side == models.SideUnder {
		return "Under"
	}
	return "Over"
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// WriteCardFile renders the card into dir as picks_card_YYYY-MM-DD.txt and
// returns the written path.
func WriteCardFile(dir string, run *models.ScanRun, picks []models.Pick) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	var buf bytes.Buffer
	NewCardWriter(&buf).Render(run, picks)

	path := filepath.Join(dir, fmt.Sprintf("picks_card_%s.txt", run.ScanDate.Format("2006-01-02")))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing picks card: %w", err)
	}
	return path, nil
}

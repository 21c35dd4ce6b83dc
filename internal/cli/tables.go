package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"crosscheck/internal/model"
	"crosscheck/internal/storage"
)

const maxTableRows = 25

// RenderObjectRisks renders the top risk objects as a table.
func RenderObjectRisks(risks []model.ObjectRisk) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Object", "Risk Points", "Why"})

	for i, r := range risks {
		if i == maxTableRows {
			t.AppendFooter(table.Row{fmt.Sprintf("… %d more", len(risks)-maxTableRows), "", ""})
			break
		}
		t.AppendRow(table.Row{r.ObjectIdentity, r.Points, strings.Join(r.Reasons, ", ")})
	}

	return t.Render()
}

// RenderOverlaps renders overlap findings as a table.
func RenderOverlaps(overlaps []model.OverlapFinding) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Object", "Kind", "Conflicting Changes", "Apps"})

	for _, o := range overlaps {
		t.AppendRow(table.Row{
			o.ObjectIdentity,
			string(o.Kind),
			strings.Join(o.ConflictingChangeIDs, ", "),
			strings.Join(o.AppIDs, ", "),
		})
	}

	return t.Render()
}

// RenderScoreBreakdown renders the risk score factors in their fixed
// order.
func RenderScoreBreakdown(score model.RiskScore) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Factor", "Raw", "Weight", "Contribution"})

	for _, f := range score.Breakdown {
		t.AppendRow(table.Row{
			f.Name,
			fmt.Sprintf("%.3f", f.Raw),
			fmt.Sprintf("%.3f", f.Weight),
			fmt.Sprintf("%.3f", f.Contribution),
		})
	}
	t.AppendFooter(table.Row{"total", "", "", fmt.Sprintf("%.3f", score.Total)})

	return t.Render()
}

// RenderRules renders catalog rules as a table.
func RenderRules(rules []model.OwnershipRule) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"App", "Pattern", "Priority", "Criticality"})

	for _, r := range rules {
		t.AppendRow(table.Row{r.AppID, r.MatchPattern, r.Priority, fmt.Sprintf("%.2f", r.CriticalityWeight)})
	}

	return t.Render()
}

// RenderChanges renders the stored change history as a table.
func RenderChanges(changes []storage.StoredChange) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Change", "Generated", "Objects", "Risk", "Level"})

	for _, c := range changes {
		t.AppendRow(table.Row{
			c.ChangeID,
			c.GeneratedAt.Format("2006-01-02 15:04"),
			c.ObjectsTotal,
			fmt.Sprintf("%.2f", c.RiskScore),
			string(c.RiskLevel),
		})
	}

	return t.Render()
}

package export

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"crosscheck/internal/model"
)

// ChecklistSection is one titled block of the tester-scope checklist.
type ChecklistSection struct {
	Title string
	Items []string
}

// enhancement and DDIC type markers used to pick focus items.
var (
	enhancementMarkers = []string{":CMOD:", ":SMOD:", ":ENHO:", ":ENHS:", ":SPOT:"}
	ddicMarkers        = []string{":TABL:", ":VIEW:", ":DDLS:"}
)

const maxFocusItems = 10

// BuildChecklistSections derives the tester-scope checklist from a
// findings document: what to focus on, what not to re-test, and a smoke
// pass.
func BuildChecklistSections(doc model.FindingsDocument) []ChecklistSection {
	var sections []ChecklistSection

	var focus []string
	if enh := risksMatching(doc.ObjectRisks, enhancementMarkers); len(enh) > 0 {
		focus = append(focus, "Prioritize validation around exits/enhancements (high regression risk):")
		focus = append(focus, enh...)
	}
	if ddic := risksMatching(doc.ObjectRisks, ddicMarkers); len(ddic) > 0 {
		focus = append(focus, "Prioritize DDIC/CDS checks (data structure & semantics):")
		focus = append(focus, ddic...)
	}
	if apps := doc.ImpactedAppIDs(); len(apps) > 0 {
		focus = append(focus, "Impacted apps/components to regression test:")
		for _, app := range apps {
			focus = append(focus, fmt.Sprintf("%s (matched objects: %d)", app, objectsOwnedBy(doc.Objects, app)))
		}
	}
	if len(focus) == 0 {
		focus = append(focus, "Review top risk objects and select at least 1 happy-path + 1 negative-path scenario per impacted area.")
	}
	sections = append(sections, ChecklistSection{Title: "What to focus on", Items: focus})

	var dedupe []string
	if len(doc.Overlaps) > 0 {
		dedupe = append(dedupe, "Avoid redundant testing where overlap is already covered:")
		for _, o := range doc.Overlaps {
			dedupe = append(dedupe, fmt.Sprintf("%s overlaps (%s) with %s",
				o.ObjectIdentity, o.Kind, strings.Join(o.ConflictingChangeIDs, ", ")))
		}
	} else {
		dedupe = append(dedupe, "No overlaps detected against stored changes in the analysis window.")
	}
	sections = append(sections, ChecklistSection{Title: "Redundancy guardrails", Items: dedupe})

	sections = append(sections, ChecklistSection{
		Title: "Quick smoke checklist",
		Items: []string{
			"Run quick smoke for the impacted apps (basic navigation + primary transaction).",
			"Validate authorization/role impacts if exits/enhancements touch security-sensitive flows.",
			"Confirm error handling: failures should be localized and actionable.",
			"Capture screenshots/logs for any new validations to make future triage faster.",
		},
	})

	return sections
}

func risksMatching(risks []model.ObjectRisk, markers []string) []string {
	var out []string
	for _, r := range risks {
		for _, marker := range markers {
			if strings.Contains(r.ObjectIdentity, marker) {
				out = append(out, r.ObjectIdentity)
				break
			}
		}
		if len(out) == maxFocusItems {
			break
		}
	}
	return out
}

func objectsOwnedBy(objects []model.ClassifiedObject, appID string) int {
	n := 0
	for _, obj := range objects {
		for _, app := range obj.MatchedAppIDs {
			if app == appID {
				n++
				break
			}
		}
	}
	return n
}

var checklistTemplate = template.Must(template.New("checklist").Parse(`<!doctype html>
<html><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>crosscheck — Tester Scope Checklist</title>
<style>
body{font-family:Arial,Helvetica,sans-serif;margin:24px;line-height:1.35;color:#111}
.card{border:1px solid #ddd;border-radius:12px;padding:14px 16px;margin-bottom:14px}
h1{margin:0 0 6px 0;font-size:22px}
.meta{color:#444;font-size:13px}
h2{font-size:16px;margin:0 0 8px 0}
ul{margin:8px 0 0 18px}
code{background:#f6f6f6;padding:2px 6px;border-radius:6px}
</style>
</head><body>
<div class="card">
<h1>crosscheck — Tester Scope Checklist</h1>
<div class="meta"><b>Change:</b> <code>{{.Doc.ChangeID}}</code> &nbsp;|&nbsp;
<b>Generated:</b> {{.Doc.Meta.GeneratedAt.Format "2006-01-02 15:04"}} &nbsp;|&nbsp;
<b>Risk:</b> {{printf "%.2f" .Doc.Summary.RiskScore}} ({{.Doc.Summary.RiskLevel}})</div>
</div>
{{range .Sections}}<div class="card">
<h2>{{.Title}}</h2>
<ul>
{{range .Items}}<li>{{.}}</li>
{{end}}</ul>
</div>
{{end}}</body></html>
`))

// WriteHTML renders the tester-scope checklist for a findings document.
func WriteHTML(w io.Writer, doc model.FindingsDocument) error {
	data := struct {
		Doc      model.FindingsDocument
		Sections []ChecklistSection
	}{Doc: doc, Sections: BuildChecklistSections(doc)}

	if err := checklistTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render checklist HTML: %w", err)
	}
	return nil
}

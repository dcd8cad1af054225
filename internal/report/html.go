package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// htmlTemplate renders the report as a standalone HTML page.
var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"severityOrder": func() []string { return types.SeverityOrder },
	"heading":       func(severity string) string { return severityHeadings[severity] },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Reconnaissance Report: {{.Target}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; color: #1a1a1a; }
h1 { border-bottom: 2px solid #ddd; padding-bottom: .5rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: .4rem .8rem; text-align: left; }
.finding { border-left: 4px solid #ccc; margin: 1rem 0; padding: .5rem 1rem; background: #fafafa; }
.finding.critical { border-color: #c0392b; }
.finding.high { border-color: #e67e22; }
.finding.medium { border-color: #f1c40f; }
.finding.low { border-color: #3498db; }
.finding.info { border-color: #95a5a6; }
.probe { color: #666; font-size: .85rem; }
</style>
</head>
<body>
<h1>Reconnaissance Report: {{.Target}}</h1>
<p>Scanned at {{.ScanTime}}, report generated at {{.GeneratedAt}}.</p>

<h2>Executive Summary</h2>
<p>Overall risk level: <strong>{{.Summary.RiskLevel}}</strong>. Total findings: <strong>{{.Summary.TotalFindings}}</strong>.</p>
<table>
<tr><th>Severity</th><th>Findings</th></tr>
{{- range severityOrder }}
<tr><td>{{.}}</td><td>{{index $.Summary.BySeverity .}}</td></tr>
{{- end }}
</table>

<h2>Probe Status</h2>
<table>
<tr><th>Successful</th><td>{{len .ProbeStatus.Successful}}</td></tr>
<tr><th>Skipped</th><td>{{len .ProbeStatus.Skipped}}</td></tr>
<tr><th>Failed</th><td>{{len .ProbeStatus.Failed}}</td></tr>
</table>

{{- range $severity := severityOrder }}
{{- $findings := index $.Findings $severity }}
{{- if $findings }}
<h2>{{heading $severity}}</h2>
{{- range $findings }}
<div class="finding {{$severity}}">
<h3>{{.Title}}</h3>
<p class="probe">Probe: {{.Probe}}</p>
{{- if .Description }}<p>{{.Description}}</p>{{- end }}
{{- if .Recommendation }}<p><em>Recommendation: {{.Recommendation}}</em></p>{{- end }}
</div>
{{- end }}
{{- end }}
{{- end }}
</body>
</html>
`))

// RenderHTML writes the report as a standalone HTML page.
func RenderHTML(w io.Writer, report *Report) error {
	if err := htmlTemplate.Execute(w, report); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	return nil
}

package slack

import (
	"fmt"
	"strings"

	"github.com/mminutillo-nflx/vibe-probe/internal/report"
	"github.com/mminutillo-nflx/vibe-probe/internal/types"
)

// severityEmojis decorates severity counts in the scan summary
var severityEmojis = map[string]string{
	types.SeverityCritical: ":rotating_light:",
	types.SeverityHigh:     ":warning:",
	types.SeverityMedium:   ":large_orange_diamond:",
	types.SeverityLow:      ":small_blue_diamond:",
	types.SeverityInfo:     ":information_source:",
}

// BuildScanMessage renders an aggregated scan report as a Block Kit message
// with the risk level, severity counts, and probe status.
func BuildScanMessage(r *report.Report) Message {
	blocks := []Block{
		{
			Type: "header",
			Text: &TextObject{Type: "plain_text", Text: fmt.Sprintf("Scan complete: %s", r.Target)},
		},
		{
			Type: "section",
			Text: &TextObject{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*Risk level:* %s\n*Total findings:* %d", r.Summary.RiskLevel, r.Summary.TotalFindings),
			},
		},
		{
			Type:   "section",
			Fields: severityFields(r),
		},
		{Type: "divider"},
		{
			Type: "section",
			Text: &TextObject{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*Probes:* %d successful, %d skipped, %d failed",
					len(r.ProbeStatus.Successful), len(r.ProbeStatus.Skipped), len(r.ProbeStatus.Failed)),
			},
		},
	}

	if len(r.ProbeStatus.Failed) > 0 {
		blocks = append(blocks, Block{
			Type: "section",
			Text: &TextObject{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*Failed probes:* %s", strings.Join(r.ProbeStatus.Failed, ", ")),
			},
		})
	}

	return Message{
		Text:   fmt.Sprintf("Scan of %s complete: %d findings, risk level %s", r.Target, r.Summary.TotalFindings, r.Summary.RiskLevel),
		Blocks: blocks,
	}
}

// severityFields builds one field per severity level in ranked order.
func severityFields(r *report.Report) []TextObject {
	fields := make([]TextObject, 0, len(types.SeverityOrder))

	for _, severity := range types.SeverityOrder {
		fields = append(fields, TextObject{
			Type: "mrkdwn",
			Text: fmt.Sprintf("%s *%s:* %d", severityEmojis[severity], severity, r.Summary.BySeverity[severity]),
		})
	}

	return fields
}

package terminal

import (
	"fmt"
	"io"
	"time"

	"storefront_e2e/application/scenarios"
	"storefront_e2e/domain/entities"

	"github.com/fatih/color"
)

var (
	passColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed)
	flakyColor = color.New(color.FgYellow)
	grayColor  = color.New(color.Faint)
	valueColor = color.New(color.FgCyan)
)

// Printer renders scenarios and reports for a terminal
type Printer struct {
	w io.Writer
}

// NewPrinter - creates new printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintScenarios - lists scenarios with their descriptions
func (p *Printer) PrintScenarios(all []scenarios.Scenario) {
	for _, sc := range all {
		_, _ = valueColor.Fprintf(p.w, "%-12s", sc.Name)
		_, _ = grayColor.Fprintf(p.w, " %s\n", sc.Description)
	}
}

// PrintReport - prints one line per scenario and a summary
func (p *Printer) PrintReport(report entities.RunReport) {
	for _, res := range report.Results {
		mark, c := verdictMark(res.Verdict)
		_, _ = c.Fprintf(p.w, "  %s ", mark)
		fmt.Fprintf(p.w, "[%s] %s", res.Project, res.Scenario)

		last, ok := res.LastAttempt()
		if ok {
			_, _ = grayColor.Fprintf(p.w, " (%s", last.Duration.Round(time.Millisecond))
			if len(res.Attempts) > 1 {
				_, _ = grayColor.Fprintf(p.w, ", %d attempts", len(res.Attempts))
			}
			_, _ = grayColor.Fprint(p.w, ")")
		}
		fmt.Fprintln(p.w)

		if ok && !last.Passed && last.Error != "" {
			_, _ = failColor.Fprintf(p.w, "      %s: %s\n", last.ErrorKind, last.Error)
			if last.Screenshot != "" {
				_, _ = grayColor.Fprintf(p.w, "      screenshot: %s\n", last.Screenshot)
			}
		}
	}

	fmt.Fprintln(p.w)
	p.summary(report.Count(entities.VerdictPassed), "passed", passColor)
	p.summary(report.Count(entities.VerdictFlaky), "flaky", flakyColor)
	p.summary(report.Count(entities.VerdictFailed), "failed", failColor)
	p.summary(report.Count(entities.VerdictSkipped), "skipped", grayColor)
	if !report.FinishedAt.IsZero() {
		_, _ = grayColor.Fprintf(p.w, "  finished in %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
}

func (p *Printer) summary(n int, label string, c *color.Color) {
	if n == 0 {
		return
	}
	_, _ = c.Fprintf(p.w, "  %d %s\n", n, label)
}

func verdictMark(v entities.Verdict) (string, *color.Color) {
	switch v {
	case entities.VerdictPassed:
		return "✓", passColor
	case entities.VerdictFlaky:
		return "~", flakyColor
	case entities.VerdictFailed:
		return "✗", failColor
	default:
		return "-", grayColor
	}
}

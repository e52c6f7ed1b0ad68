// Package templates renders the HTMX fragments returned to browser clients.
// Components are plain templ.Component values so handlers can render them
// with Render(ctx, w) or templ.Handler.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/listimport/internal/core"
	"github.com/a-h/templ"
)

// ErrorAlert renders a dismissible error box with the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		fmt.Fprintf(&b, `<p class="alert-message">%s</p>`, templ.EscapeString(message))
		if action != "" {
			fmt.Fprintf(&b, `<p class="alert-action">%s</p>`, templ.EscapeString(action))
		}
		if code != "" {
			fmt.Fprintf(&b, `<p class="alert-code">Error code: %s</p>`, templ.EscapeString(code))
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ImportReport renders the outcome of one import job.
func ImportReport(job *core.ImportJob, cancelled bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		rep := job.Report
		var b strings.Builder

		status := "success"
		switch {
		case cancelled:
			status = "cancelled"
		case !rep.Success:
			status = "partial"
		}

		fmt.Fprintf(&b, `<section class="import-report import-%s" data-job-id="%s">`, status, job.ID)
		fmt.Fprintf(&b, `<h3>%s</h3>`, templ.EscapeString(reportHeading(job, cancelled)))
		b.WriteString(`<dl class="import-counts">`)
		writeCount(&b, "Imported", rep.Imported)
		writeCount(&b, "Skipped", rep.Skipped)
		writeCount(&b, "Errors", len(rep.Errors))
		writeCount(&b, "Warnings", len(rep.Warnings))
		b.WriteString(`</dl>`)

		if len(rep.Errors) > 0 {
			b.WriteString(`<table class="import-issues import-errors"><thead><tr><th>Row</th><th>Error</th></tr></thead><tbody>`)
			for _, e := range rep.Errors {
				fmt.Fprintf(&b, `<tr><td>%d</td><td>%s</td></tr>`, e.Row, templ.EscapeString(e.Message))
			}
			b.WriteString(`</tbody></table>`)
		}
		if len(rep.Warnings) > 0 {
			b.WriteString(`<table class="import-issues import-warnings"><thead><tr><th>Row</th><th>Warning</th></tr></thead><tbody>`)
			for _, e := range rep.Warnings {
				fmt.Fprintf(&b, `<tr><td>%d</td><td>%s</td></tr>`, e.Row, templ.EscapeString(e.Message))
			}
			b.WriteString(`</tbody></table>`)
		}
		b.WriteString(`</section>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func reportHeading(job *core.ImportJob, cancelled bool) string {
	name := job.FileName
	if name == "" {
		name = "Import"
	}
	if cancelled {
		return fmt.Sprintf("%s stopped after %d of %d rows", name, job.Report.Processed(), job.TotalRows)
	}
	return fmt.Sprintf("%s: %d rows read as %s", name, job.TotalRows, job.Dialect)
}

func writeCount(b *strings.Builder, label string, n int) {
	fmt.Fprintf(b, `<dt>%s</dt><dd>%d</dd>`, label, n)
}

// DetectResult renders the detected dialect and column mapping.
func DetectResult(res *core.DetectResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section class="detect-result" data-valid="%t">`, res.Valid)
		fmt.Fprintf(&b, `<p>Format: <strong>%s</strong>, %d data rows</p>`, templ.EscapeString(res.Dialect.String()), res.TotalRows)
		b.WriteString(`<ul class="detect-mapping">`)
		for _, m := range res.Mapping {
			fmt.Fprintf(&b, `<li>%s</li>`, templ.EscapeString(m))
		}
		b.WriteString(`</ul>`)
		if res.Problem != "" {
			fmt.Fprintf(&b, `<p class="detect-problem">%s</p>`, templ.EscapeString(res.Problem))
		}
		b.WriteString(`</section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ImportHistory renders the caller's recent imports.
func ImportHistory(items []core.ImportSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		if len(items) == 0 {
			b.WriteString(`<p class="empty">No imports yet</p>`)
			_, err := io.WriteString(w, b.String())
			return err
		}
		b.WriteString(`<table class="import-history"><thead><tr>` +
			`<th>When</th><th>Collection</th><th>File</th><th>Imported</th><th>Skipped</th><th>Errors</th><th>Warnings</th><th></th>` +
			`</tr></thead><tbody>`)
		for _, it := range items {
			fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td>`,
				it.CreatedAt.Format("2006-01-02 15:04"),
				templ.EscapeString(it.Collection),
				templ.EscapeString(it.FileName),
				it.Imported, it.Skipped, it.Errors, it.Warnings,
			)
			if it.Errors+it.Warnings > 0 {
				fmt.Fprintf(&b, `<td><a href="/api/imports/%s/issues">Download issues</a></td>`, it.ID)
			} else {
				b.WriteString(`<td></td>`)
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/listimport/internal/core"
	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderDetect prints the detected format and column mapping.
func renderDetect(res *core.DetectResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Format: %s, %d data rows\n", res.Dialect, res.TotalRows)

	rows := make([][]string, 0, len(res.Columns))
	for _, f := range res.Columns.Fields() {
		i := res.Columns[f]
		header := ""
		if i >= 0 && i < len(res.Headers) {
			header = res.Headers[i]
		}
		rows = append(rows, []string{f.String(), strconv.Itoa(i), header})
	}
	if len(rows) > 0 {
		b.WriteString(renderTable([]string{"Field", "Column", "Header"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
		b.WriteString("\n")
	}
	if !res.Valid {
		fmt.Fprintf(&b, "Problem: %s\n", res.Problem)
	}
	return b.String()
}

// renderReport prints the counts and row issues of an import.
func renderReport(job *core.ImportJob) string {
	rep := job.Report
	var b strings.Builder

	fmt.Fprintf(&b, "%s -> %s (%s, %d rows)\n", job.FileName, job.Collection, job.Dialect, job.TotalRows)
	b.WriteString(renderTable(
		[]string{"Imported", "Skipped", "Errors", "Warnings"},
		[][]string{{
			strconv.Itoa(rep.Imported),
			strconv.Itoa(rep.Skipped),
			strconv.Itoa(len(rep.Errors)),
			strconv.Itoa(len(rep.Warnings)),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
	))
	b.WriteString("\n")

	issues := issueRows(rep)
	if len(issues) > 0 {
		b.WriteString(renderTable([]string{"Row", "Severity", "Message"}, issues, []columnAlignment{alignRight}))
		b.WriteString("\n")
	}
	return b.String()
}

// issueRows merges errors and warnings ordered by row, errors first on ties.
func issueRows(rep *core.ImportReport) [][]string {
	type issue struct {
		row      int
		severity string
		message  string
	}
	all := make([]issue, 0, len(rep.Errors)+len(rep.Warnings))
	for _, e := range rep.Errors {
		all = append(all, issue{e.Row, "error", e.Message})
	}
	for _, w := range rep.Warnings {
		all = append(all, issue{w.Row, "warning", w.Message})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].row < all[j].row })

	rows := make([][]string, len(all))
	for i, it := range all {
		rows[i] = []string{strconv.Itoa(it.row), it.severity, it.message}
	}
	return rows
}

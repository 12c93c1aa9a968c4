package main

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/JakeFAU/fashion-etl/internal/pipeline"
)

func renderSummary(out io.Writer, report pipeline.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Run " + report.RunID)
	t.AppendHeader(table.Row{"Step", "Result"})
	t.AppendRows([]table.Row{
		{"base url", report.BaseURL},
		{"pages fetched", report.PagesFetched},
		{"raw records", report.RawRecords},
		{"rows", report.Rows},
		{"last stage", report.Stage},
		{"duration", report.Duration.Round(time.Millisecond).String()},
	})
	t.AppendSeparator()
	for _, o := range report.Sinks {
		t.AppendRow(table.Row{"sink " + o.Sink, result(o.OK)})
	}
	t.AppendFooter(table.Row{"overall", result(report.OK)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

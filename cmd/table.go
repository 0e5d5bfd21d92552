package cmd

import (
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"docent/internal/service/media"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderReport 阶段摘要表：阶段、产物、数量、大小、耗时
func renderReport(report *media.RunReport) string {
	rows := make([][]string, 0, len(report.Stages))
	for _, stage := range report.Stages {
		rows = append(rows, []string{
			stage.Stage,
			stage.Artifact,
			humanize.Comma(int64(stage.Count)),
			artifactSize(stage.Artifact),
			stage.Elapsed.Round(time.Millisecond).String(),
		})
	}
	return renderTable(
		[]string{"Stage", "Artifact", "Count", "Size", "Elapsed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

// artifactSize 文件返回可读大小，目录返回目录内文件总大小
func artifactSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "-"
	}
	if !info.IsDir() {
		return humanize.Bytes(uint64(info.Size()))
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "-"
	}
	var total int64
	for _, entry := range entries {
		if fi, err := entry.Info(); err == nil && !fi.IsDir() {
			total += fi.Size()
		}
	}
	return humanize.Bytes(uint64(total))
}

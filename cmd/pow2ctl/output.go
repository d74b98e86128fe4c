package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/MikeSquared-Agency/Pow2/internal/engine"
	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, title string, headers []string, rows [][]string) {
	if title != "" {
		color.New(color.Bold).Fprintln(w, title)
		fmt.Fprintln(w, strings.Repeat("=", len(title)))
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)
	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	fmt.Fprintln(w)
}

func renderResponse(w io.Writer, resp *engine.Response) {
	fmt.Fprintf(w, "season %s at %s (request %s)\n\n", resp.Season, resp.Now.Format("2006-01-02 15:04:05 MST"), resp.RequestID)
	for _, r := range resp.Results {
		if r.Error != "" {
			color.Red("%s: %s (%s)", label(r.ID), r.Error, r.Kind)
			fmt.Fprintln(w)
			continue
		}
		rows := [][]string{}
		for _, name := range r.Result.Order {
			rows = appendWeight(rows, name, r.Result.FactorWeights[name], "")
		}
		renderTable(w, fmt.Sprintf("%s: cpu %s", label(r.ID), color.GreenString(factors.FormatDecimal(r.Result.CPU))),
			[]string{"Factor", "Value", "Weight"}, rows)
	}
	if resp.Failed > 0 {
		color.Yellow("%d of %d entities failed", resp.Failed, len(resp.Results))
	}
}

func appendWeight(rows [][]string, name string, wr factors.WeightResult, indent string) [][]string {
	rows = append(rows, []string{indent + name, fmt.Sprint(wr.Value), factors.FormatDecimal(wr.Weight)})
	children := make([]string, 0, len(wr.Children))
	for child := range wr.Children {
		children = append(children, child)
	}
	sort.Strings(children)
	for _, child := range children {
		rows = appendWeight(rows, child, wr.Children[child], indent+"  ")
	}
	return rows
}

func label(id string) string {
	if id == "" {
		return "entity"
	}
	return id
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

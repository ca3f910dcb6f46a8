// Package console prints tables and codebook summaries to a terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"surveycli/internal/exporter"
	"surveycli/internal/survey"
	api "surveycli/pkg/contracts/api/v1"
	"surveycli/pkg/contracts/domain"
)

// Renderer writes human-readable output. Colors follow color.NoColor unless
// disabled explicitly.
type Renderer struct {
	w       io.Writer
	title   *color.Color
	section *color.Color
	note    *color.Color
	warn    *color.Color
}

// NewRenderer creates a renderer writing to w
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		w:       w,
		title:   color.New(color.FgCyan, color.Bold),
		section: color.New(color.FgYellow),
		note:    color.New(color.Faint),
		warn:    color.New(color.FgRed),
	}
}

// DisableColor turns off escape codes for this renderer only
func (r *Renderer) DisableColor() *Renderer {
	for _, c := range []*color.Color{r.title, r.section, r.note, r.warn} {
		c.DisableColor()
	}
	return r
}

// Table prints t as a bordered grid. Repeated row labels in the outer index
// levels are blanked, and a footnote explains the significance marker.
func (r *Renderer) Table(t *domain.Table, level float64) {
	if t.Title != "" {
		r.title.Fprintln(r.w, t.Title)
	}

	g := exporter.Flatten(t)
	tw := tablewriter.NewWriter(r.w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeader(headerLabels(t, g.IndexCols))

	aligns := make([]int, g.IndexCols+len(t.Columns))
	for i := range aligns {
		aligns[i] = tablewriter.ALIGN_RIGHT
		if i < g.IndexCols {
			aligns[i] = tablewriter.ALIGN_LEFT
		}
	}
	if g.IndexCols == 0 && len(aligns) > 0 {
		// positional tables lead with the answer label
		aligns[0] = tablewriter.ALIGN_LEFT
	}
	tw.SetColumnAlignment(aligns)

	var prev []string
	for _, row := range g.Body {
		shown := append([]string(nil), row...)
		for i := 0; i < g.IndexCols-1 && prev != nil; i++ {
			if row[i] != prev[i] {
				break
			}
			shown[i] = ""
		}
		prev = row
		tw.Append(shown)
	}
	tw.Render()

	if hasMarker(t) {
		r.note.Fprintf(r.w, "%s significantly different between groups at the %g level\n",
			survey.SignificanceMarker, level)
	}
	fmt.Fprintln(r.w)
}

func headerLabels(t *domain.Table, indexCols int) []string {
	labels := make([]string, 0, indexCols+len(t.Columns))
	for i := 0; i < indexCols; i++ {
		labels = append(labels, "")
	}
	for _, key := range t.Columns {
		labels = append(labels, key.String())
	}
	return labels
}

func hasMarker(t *domain.Table) bool {
	keys := append(append([]domain.Key(nil), t.Columns...), t.Index...)
	for _, k := range keys {
		if strings.HasSuffix(k.Last(), survey.SignificanceMarker) {
			return true
		}
	}
	return false
}

// Codebook prints the questions and matrices a codebook defines
func (r *Renderer) Codebook(cb api.CodebookResponse) {
	if cb.Title != "" {
		r.title.Fprintln(r.w, cb.Title)
	}
	if cb.Respondents > 0 {
		fmt.Fprintf(r.w, "%d respondents\n", cb.Respondents)
	}

	r.section.Fprintln(r.w, "\nQuestions")
	tw := tablewriter.NewWriter(r.w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeader([]string{"ID", "Type", "Variables", "Text", "Answers", "Matrix"})
	for _, q := range cb.Questions {
		tw.Append([]string{q.ID, q.Type, strings.Join(q.Variables, ", "), q.Text, q.Answers, q.Matrix})
	}
	tw.Render()

	if len(cb.Matrices) == 0 {
		return
	}
	r.section.Fprintln(r.w, "\nMatrices")
	tw = tablewriter.NewWriter(r.w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeader([]string{"ID", "Type", "Questions", "Text", "Answers"})
	for _, m := range cb.Matrices {
		tw.Append([]string{m.ID, m.Type, strings.Join(m.Questions, ", "), m.Text, m.Answers})
	}
	tw.Render()
}

// Errorf prints a red error line
func (r *Renderer) Errorf(format string, args ...any) {
	r.warn.Fprintf(r.w, "Error: "+format+"\n", args...)
}

// Infof prints a plain status line
func (r *Renderer) Infof(format string, args ...any) {
	r.note.Fprintf(r.w, format+"\n", args...)
}

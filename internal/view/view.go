// Package view renders workout list rows.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"

	"github.com/claude/mapty/internal/models"
)

var rowTmpl = template.Must(template.New("row").Funcs(template.FuncMap{
	"num":   formatNumber,
	"fixed": formatFixed,
}).Parse(`<li class="workout workout--{{.Kind}}" data-id="{{.ID}}">
  <h2 class="workout__title">{{.Description}}</h2>
  <div class="workout__details">
    <span class="workout__icon">{{.Kind.Emoji}}</span>
    <span class="workout__value">{{num .Distance}}</span>
    <span class="workout__unit">km</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">⏱</span>
    <span class="workout__value">{{num .Duration}}</span>
    <span class="workout__unit">min</span>
  </div>
{{- with .Running}}
  <div class="workout__details">
    <span class="workout__icon">⚡️</span>
    <span class="workout__value">{{fixed .Pace}}</span>
    <span class="workout__unit">min/km</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">🦶🏼</span>
    <span class="workout__value">{{num .Cadence}}</span>
    <span class="workout__unit">spm</span>
  </div>
{{- end}}
{{- with .Cycling}}
  <div class="workout__details">
    <span class="workout__icon">⚡️</span>
    <span class="workout__value">{{fixed .Speed}}</span>
    <span class="workout__unit">km/h</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">⛰</span>
    <span class="workout__value">{{num .ElevationGain}}</span>
    <span class="workout__unit">m</span>
  </div>
{{- end}}
</li>
`))

// RenderRow returns the list row for w.
func RenderRow(w *models.Workout) (template.HTML, error) {
	var buf bytes.Buffer
	if err := rowTmpl.Execute(&buf, w); err != nil {
		return "", fmt.Errorf("rendering workout %s: %w", w.ID, err)
	}
	return template.HTML(buf.String()), nil
}

// RenderRows renders workouts newest first, the order rows appear under the
// form.
func RenderRows(workouts []*models.Workout) (template.HTML, error) {
	var buf bytes.Buffer
	for i := len(workouts) - 1; i >= 0; i-- {
		row, err := RenderRow(workouts[i])
		if err != nil {
			return "", err
		}
		buf.WriteString(string(row))
	}
	return template.HTML(buf.String()), nil
}

// formatNumber prints v the shortest way, so 5 stays "5".
func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFixed(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

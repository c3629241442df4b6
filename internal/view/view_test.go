package view

import (
	"strings"
	"testing"

	"github.com/claude/mapty/internal/models"
)

// TestRenderRowRunning verifies the running row carries pace to one decimal
// and cadence in spm.
func TestRenderRowRunning(t *testing.T) {
	w := models.NewRunning(models.Coordinates{Lat: 40.7, Lng: -74.0}, 5, 26, 180)
	row, err := RenderRow(w)
	if err != nil {
		t.Fatalf("RenderRow: %v", err)
	}
	html := string(row)

	for _, want := range []string{
		`class="workout workout--running"`,
		`data-id="` + w.ID + `"`,
		`<h2 class="workout__title">` + w.Description + `</h2>`,
		`<span class="workout__value">5</span>`,
		`<span class="workout__value">26</span>`,
		`<span class="workout__value">5.2</span>`,
		`<span class="workout__value">180</span>`,
		`<span class="workout__unit">spm</span>`,
		"🏃‍♂️",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("row missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "km/h") {
		t.Error("running row should not show speed")
	}
}

func TestRenderRowCycling(t *testing.T) {
	w := models.NewCycling(models.Coordinates{}, 10, 30, -5)
	row, err := RenderRow(w)
	if err != nil {
		t.Fatalf("RenderRow: %v", err)
	}
	html := string(row)

	for _, want := range []string{
		`workout--cycling`,
		`<span class="workout__value">20.0</span>`,
		`<span class="workout__unit">km/h</span>`,
		`<span class="workout__value">-5</span>`,
		`<span class="workout__unit">m</span>`,
		"🚴‍♀️",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("row missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "spm") {
		t.Error("cycling row should not show cadence")
	}
}

// TestRenderRowsNewestFirst verifies rows come out in reverse insertion order.
func TestRenderRowsNewestFirst(t *testing.T) {
	first := models.NewRunning(models.Coordinates{}, 1, 1, 1)
	second := models.NewCycling(models.Coordinates{}, 1, 1, 1)

	rows, err := RenderRows([]*models.Workout{first, second})
	if err != nil {
		t.Fatalf("RenderRows: %v", err)
	}
	html := string(rows)
	if strings.Index(html, second.ID) > strings.Index(html, first.ID) {
		t.Error("newest workout should be rendered first")
	}
	if strings.Count(html, "<li ") != 2 {
		t.Errorf("want 2 rows, got:\n%s", html)
	}
}

func TestRenderRowsEmpty(t *testing.T) {
	rows, err := RenderRows(nil)
	if err != nil || rows != "" {
		t.Errorf("RenderRows(nil) = %q, %v", rows, err)
	}
}

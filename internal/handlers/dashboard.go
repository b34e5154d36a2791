package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"roadserver/internal/logger"
	"roadserver/internal/models"
	"roadserver/internal/repository"
)

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
<title>Road Damage Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<h1>Road Damage Detections</h1>
<p>{{len .}} detection(s) recorded.</p>
<table>
<tr><th>ID</th><th>Image</th><th>Location</th><th>Damages</th><th>Timestamp</th></tr>
{{range .}}
<tr>
<td>{{.ID}}</td>
<td><a href="/api/image/{{.ID}}">{{.ImageID}}</a></td>
<td>{{printf "%.4f" .Latitude}}, {{printf "%.4f" .Longitude}}</td>
<td>{{range $i, $d := .Damages}}{{if $i}}, {{end}}{{$d}}{{end}}</td>
<td>{{.Timestamp}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

// dashboardRow is the view model for one rendered detection.
type dashboardRow struct {
	ID        int64
	ImageID   string
	Latitude  float64
	Longitude float64
	Damages   []string
	Timestamp string
}

// DashboardHandler renders the stored detections as an HTML listing.
func DashboardHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := repo.GetAll()
		if err != nil {
			logger.Error("Failed to fetch detections for dashboard: %v", err)
			errorJSON(w, http.StatusInternalServerError, "Failed to render dashboard", err)
			return
		}

		rows := make([]dashboardRow, 0, len(events))
		for i := range events {
			rows = append(rows, toDashboardRow(&events[i]))
		}

		var buf bytes.Buffer
		if err := dashboardTmpl.Execute(&buf, rows); err != nil {
			logger.Error("Failed to render dashboard: %v", err)
			errorJSON(w, http.StatusInternalServerError, "Failed to render dashboard", err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}

// toDashboardRow resolves the stored damage list, tolerating legacy
// plain-string entries, into display strings.
func toDashboardRow(ev *models.DetectionEvent) dashboardRow {
	row := dashboardRow{
		ID:        ev.ID,
		ImageID:   ev.ImageID,
		Latitude:  ev.Latitude,
		Longitude: ev.Longitude,
		Timestamp: ev.Timestamp.Format("2006-01-02 15:04:05"),
	}

	var entries []models.DamageEntry
	if err := json.Unmarshal(ev.DetectedDamages, &entries); err != nil {
		row.Damages = []string{string(ev.DetectedDamages)}
		return row
	}

	for i := range entries {
		if entries[i].Legacy {
			row.Damages = append(row.Damages, entries[i].Label())
			continue
		}
		row.Damages = append(row.Damages, fmt.Sprintf("%s (%.2f)", entries[i].Label(), entries[i].Confidence()))
	}

	return row
}

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/matbakh-app/google-job-worker/internal/models"
)

// Generator produces the visibility report artifact for a completed lead.
type Generator interface {
	Generate(ctx context.Context, lead *models.VisibilityLead) (string, error)
}

// HTMLGenerator renders the lead's stored analysis into a standalone HTML
// report under OutputDir and returns its path.
type HTMLGenerator struct {
	OutputDir string
	log       *slog.Logger
}

func NewHTMLGenerator(outputDir string, log *slog.Logger) *HTMLGenerator {
	return &HTMLGenerator{OutputDir: outputDir, log: log}
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="de">
<head><meta charset="utf-8"><title>Sichtbarkeits-Report {{.LeadID}}</title></head>
<body>
<h1>Sichtbarkeits-Report</h1>
<p>Lead: {{.LeadID}}</p>
<p>Erstellt: {{.GeneratedAt}}</p>
<table border="1" cellpadding="6">
<tr><th>Kennzahl</th><th>Wert</th></tr>
{{range $k, $v := .Scores}}<tr><td>{{$k}}</td><td>{{$v}}</td></tr>
{{end}}</table>
</body>
</html>
`))

type reportData struct {
	LeadID      string
	GeneratedAt string
	Scores      map[string]any
}

func (g *HTMLGenerator) Generate(ctx context.Context, lead *models.VisibilityLead) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	scores := map[string]any{}
	if len(lead.Analysis) > 0 {
		if err := json.Unmarshal(lead.Analysis, &scores); err != nil {
			return "", fmt.Errorf("decode lead analysis: %w", err)
		}
	}

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(g.OutputDir, fmt.Sprintf("visibility-report-%s.html", lead.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	data := reportData{
		LeadID:      lead.ID,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Scores:      scores,
	}
	if err := reportTmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	g.log.Info("generated visibility report",
		slog.String("lead_id", lead.ID),
		slog.String("path", path))

	return path, nil
}

package report

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/matbakh-app/google-job-worker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newGenerator(t *testing.T) *HTMLGenerator {
	t.Helper()
	return NewHTMLGenerator(t.TempDir(), slog.New(slog.DiscardHandler))
}

func TestGenerate_RendersScores(t *testing.T) {
	g := newGenerator(t)

	lead := &models.VisibilityLead{
		ID:       "L1",
		Status:   models.LeadStatusCompleted,
		Analysis: datatypes.JSON([]byte(`{"google_score":72,"review_count":134}`)),
	}

	path, err := g.Generate(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.OutputDir, "visibility-report-L1.html"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Sichtbarkeits-Report")
	assert.Contains(t, string(content), "google_score")
	assert.Contains(t, string(content), "72")
	assert.Contains(t, string(content), "review_count")
}

func TestGenerate_EmptyAnalysis(t *testing.T) {
	g := newGenerator(t)

	path, err := g.Generate(context.Background(), &models.VisibilityLead{ID: "L2"})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "L2")
}

func TestGenerate_MalformedAnalysis(t *testing.T) {
	g := newGenerator(t)

	_, err := g.Generate(context.Background(), &models.VisibilityLead{
		ID:       "L3",
		Analysis: datatypes.JSON([]byte(`{broken`)),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode lead analysis")
}

func TestGenerate_CanceledContext(t *testing.T) {
	g := newGenerator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, &models.VisibilityLead{ID: "L4"})
	require.ErrorIs(t, err, context.Canceled)
}

package services

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"dynamocards-backend/internal/concepts"
	"dynamocards-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func completedAnalysis() *models.Analysis {
	res := sampleResult()
	return &models.Analysis{
		ID:       "a-1",
		VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoID:  "dQw4w9WgXcQ",
		Title:    "Lecture",
		KeyConcepts: []concepts.Record{
			{Term: "Photosynthesis", Definition: "Light, water and CO2 to sugar"},
			{Term: "Chlorophyll", Definition: "Green pigment"},
		},
		Plan:   &res.Plan,
		Usage:  &res.Usage,
		Status: models.AnalysisCompleted,
	}
}

func newTestExporter() *ExportService {
	es := NewExportService()
	es.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return es
}

func TestExportJSON(t *testing.T) {
	file, err := newTestExporter().Export(completedAnalysis(), "json")
	require.NoError(t, err)
	assert.Equal(t, "flashcards_dQw4w9WgXcQ.json", file.Filename)

	var out FlashcardExport
	require.NoError(t, json.Unmarshal(file.Data, &out))
	assert.Equal(t, 2, out.ExportInfo.TotalCards)
	assert.Equal(t, "Photosynthesis", out.Flashcards[0].Term)
}

func TestExportCSVQuotesFields(t *testing.T) {
	file, err := newTestExporter().Export(completedAnalysis(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)

	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"term", "definition"},
		{"Photosynthesis", "Light, water and CO2 to sugar"},
		{"Chlorophyll", "Green pigment"},
	}, rows)
}

func TestExportExcel(t *testing.T) {
	file, err := newTestExporter().Export(completedAnalysis(), "xlsx")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Flashcards", "Summary"}, f.GetSheetList())
	term, err := f.GetCellValue("Flashcards", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis", term)
	def, err := f.GetCellValue("Flashcards", "C3")
	require.NoError(t, err)
	assert.Equal(t, "Green pigment", def)
}

func TestExportZipBundlesAllFormats(t *testing.T) {
	file, err := newTestExporter().Export(completedAnalysis(), "zip")
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(file.Data), int64(len(file.Data)))
	require.NoError(t, err)
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{
		"flashcards_dQw4w9WgXcQ.json",
		"flashcards_dQw4w9WgXcQ.csv",
		"flashcards_dQw4w9WgXcQ.xlsx",
	}, names)
}

func TestExportRejectsUnfinishedAndUnknownFormat(t *testing.T) {
	es := newTestExporter()

	pending := completedAnalysis()
	pending.Status = models.AnalysisPending
	_, err := es.Export(pending, "json")
	assert.ErrorIs(t, err, concepts.ErrInvalidArgument)

	_, err = es.Export(completedAnalysis(), "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

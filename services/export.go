package services

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dynamocards-backend/internal/concepts"
	"dynamocards-backend/internal/logger"
	"dynamocards-backend/models"
)

// Supported export formats
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
	FormatZip   = "zip" // json, csv and xlsx bundled together
)

// ErrUnsupportedFormat is returned for an unknown export format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportFile is a rendered export ready to be sent to a client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FlashcardExport is the JSON layout of an exported analysis.
type FlashcardExport struct {
	ExportInfo ExportInfo        `json:"export_info"`
	Flashcards []concepts.Record `json:"flashcards"`
}

type ExportInfo struct {
	ExportDate    time.Time `json:"export_date"`
	AnalysisID    string    `json:"analysis_id"`
	VideoURL      string    `json:"video_url"`
	Title         string    `json:"title,omitempty"`
	Author        string    `json:"author,omitempty"`
	LengthSeconds int       `json:"length,omitempty"`
	TotalCards    int       `json:"total_cards"`
	EstimatedCost float64   `json:"estimated_cost,omitempty"`
}

// ExportService renders stored analyses as downloadable flashcard decks.
type ExportService struct {
	now func() time.Time
}

// NewExportService creates a new export service
func NewExportService() *ExportService {
	return &ExportService{now: time.Now}
}

// Export renders a completed analysis in the requested format.
func (es *ExportService) Export(a *models.Analysis, format string) (*ExportFile, error) {
	if a.Status != models.AnalysisCompleted {
		return nil, fmt.Errorf("%w: analysis %s is %s", concepts.ErrInvalidArgument, a.ID, a.Status)
	}

	base := exportBaseName(a)
	switch strings.ToLower(format) {
	case "", FormatJSON:
		data, err := es.exportJSON(a)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: base + ".json", ContentType: "application/json", Data: data}, nil
	case FormatCSV:
		data, err := exportCSV(a)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case FormatExcel, "excel":
		data, err := es.exportExcel(a)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Filename:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	case FormatZip:
		data, err := es.exportZip(a, base)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: base + ".zip", ContentType: "application/zip", Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (es *ExportService) exportJSON(a *models.Analysis) ([]byte, error) {
	out := FlashcardExport{
		ExportInfo: ExportInfo{
			ExportDate:    es.now().UTC(),
			AnalysisID:    a.ID,
			VideoURL:      a.VideoURL,
			Title:         a.Title,
			Author:        a.Author,
			LengthSeconds: a.LengthSeconds,
			TotalCards:    len(a.KeyConcepts),
		},
		Flashcards: a.KeyConcepts,
	}
	if a.Usage != nil {
		out.ExportInfo.EstimatedCost = a.Usage.TotalCost
	}
	if out.Flashcards == nil {
		out.Flashcards = []concepts.Record{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}

func exportCSV(a *models.Analysis) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"term", "definition"}); err != nil {
		return nil, err
	}
	for _, r := range a.KeyConcepts {
		if err := w.Write([]string{r.Term, r.Definition}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// exportExcel writes a "Flashcards" sheet and a "Summary" sheet.
func (es *ExportService) exportExcel(a *models.Analysis) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("error closing Excel file", "error", err)
		}
	}()

	sheetName := "Flashcards"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	headers := []string{"#", "Term", "Definition"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}
	f.SetCellStyle(sheetName, "A1", "C1", headerStyle)

	for i, r := range a.KeyConcepts {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Term)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Definition)
	}
	if n := len(a.KeyConcepts); n > 0 {
		f.SetCellStyle(sheetName, "B2", fmt.Sprintf("C%d", n+1), wrapStyle)
	}
	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 90)

	summarySheetName := "Summary"
	if _, err := f.NewSheet(summarySheetName); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	summaryData := [][]interface{}{
		{"Analysis ID", a.ID},
		{"Video URL", a.VideoURL},
		{"Title", a.Title},
		{"Author", a.Author},
		{"Length (seconds)", a.LengthSeconds},
		{"Flashcards", len(a.KeyConcepts)},
		{"Exported At", es.now().UTC().Format("2006-01-02 15:04:05")},
	}
	if a.Plan != nil {
		summaryData = append(summaryData,
			[]interface{}{"Chunks", a.Plan.Chunks},
			[]interface{}{"Sample Size", a.Plan.SampleSize},
			[]interface{}{"Chunks Per Group", a.Plan.ChunksPerGroup},
		)
	}
	if a.Usage != nil {
		summaryData = append(summaryData,
			[]interface{}{"Input Characters", a.Usage.InputChars},
			[]interface{}{"Output Characters", a.Usage.OutputChars},
			[]interface{}{"Estimated Cost", a.Usage.TotalCost},
		)
	}
	for i, rowData := range summaryData {
		for j, cell := range rowData {
			cellRef, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue(summarySheetName, cellRef, cell)
		}
	}
	f.SetColWidth(summarySheetName, "A", "A", 20)
	f.SetColWidth(summarySheetName, "B", "B", 60)
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (es *ExportService) exportZip(a *models.Analysis, base string) ([]byte, error) {
	jsonData, err := es.exportJSON(a)
	if err != nil {
		return nil, err
	}
	csvData, err := exportCSV(a)
	if err != nil {
		return nil, err
	}
	excelData, err := es.exportExcel(a)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	files := []struct {
		name string
		data []byte
	}{
		{base + ".json", jsonData},
		{base + ".csv", csvData},
		{base + ".xlsx", excelData},
	}
	for _, file := range files {
		w, err := zipWriter.Create(file.name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", file.name, err)
		}
		if _, err := w.Write(file.data); err != nil {
			return nil, fmt.Errorf("failed to write %s to archive: %w", file.name, err)
		}
	}
	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func exportBaseName(a *models.Analysis) string {
	id := a.VideoID
	if id == "" {
		id = a.ID
	}
	return "flashcards_" + id
}

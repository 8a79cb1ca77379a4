package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/pkg/slug"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names.
const (
	SheetKPIs        = "KPIs"
	SheetSentiment   = "Sentiment"
	SheetTopProducts = "Top products"
)

const maxFilenameSlug = 60

// Filename returns the download name for r, e.g.
// "revix-report-30d-2025-03-31.xlsx".
func Filename(r *domain.Report) string {
	name := slug.Truncate(slug.Generate(r.Title), maxFilenameSlug)
	if name == "" {
		name = "report"
	}
	return fmt.Sprintf("revix-%s-%s.xlsx", name, r.CreatedAt.UTC().Format(time.DateOnly))
}

// ReportXLSX renders a stored snapshot as a workbook. Nothing is recomputed;
// empty values are written as blank cells.
func ReportXLSX(r *domain.Report) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), SheetKPIs); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetSentiment, SheetTopProducts} {
		if _, err := xl.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	kpis := [][]any{
		{"Field", "Value"},
		{"Title", r.Title},
		{"Preset", string(r.Preset)},
		{"Date from", timeCell(r.DateFrom)},
		{"Date to", timeCell(r.DateTo)},
		{"Generated at", r.CreatedAt.UTC().Format(time.RFC3339)},
		{"Total analyses", r.KPIs.TotalAnalyses},
		{"Average score", floatCell(r.KPIs.AvgScore10)},
		{"Best score", intCell(r.KPIs.BestScore10)},
		{"Worst score", intCell(r.KPIs.WorstScore10)},
		{"Last activity", timeCell(r.KPIs.LastActivityAt)},
	}
	if err := writeRows(xl, SheetKPIs, kpis); err != nil {
		return nil, err
	}

	sentiment := [][]any{
		{"Sentiment", "Count"},
		{"positive", r.Sentiment.Positive},
		{"neutral", r.Sentiment.Neutral},
		{"negative", r.Sentiment.Negative},
	}
	if err := writeRows(xl, SheetSentiment, sentiment); err != nil {
		return nil, err
	}

	products := [][]any{{"Product", "Analyses", "Average score", "Sentiment"}}
	for _, p := range r.TopProducts {
		products = append(products, []any{p.ProductName, p.Count, floatCell(p.AvgScore10), string(p.SentimentMode)})
	}
	if err := writeRows(xl, SheetTopProducts, products); err != nil {
		return nil, err
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeRows(xl *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := xl.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func timeCell(t *time.Time) any {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func intCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

// Package export renders the task list as a JSON, CSV or PDF report.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tasktrack/internal/task"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Formats lists the supported formats in help order.
var Formats = []string{FormatJSON, FormatCSV, FormatPDF}

// CSVHeader is the first row of a CSV export.
var CSVHeader = []string{"id", "title", "description", "completed", "created_at", "updated_at"}

// record is a task with its free text unescaped for display outside HTML.
type record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func records(tasks []task.Task) []record {
	out := make([]record, 0, len(tasks))
	for _, t := range tasks {
		d := t.Draft()
		out = append(out, record{
			ID:          t.ID,
			Title:       d.Title,
			Description: d.Description,
			Completed:   t.Completed,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return out
}

// Export renders tasks in format. The format name is case-insensitive.
func Export(tasks []task.Task, format string) ([]byte, error) {
	rs := records(tasks)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		data, err := json.MarshalIndent(rs, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatCSV:
		return exportCSV(rs)
	case FormatPDF:
		return exportPDF(rs)
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

func exportCSV(rs []record) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, r := range rs {
		row := []string{
			r.ID,
			r.Title,
			r.Description,
			strconv.FormatBool(r.Completed),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func exportPDF(rs []record) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate UTF-8 text before writing it.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(12)

	completed := 0
	for _, r := range rs {
		if r.Completed {
			completed++
		}
	}
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%d tasks, %d completed, %d active", len(rs), completed, len(rs)-completed))
	pdf.Ln(10)

	for _, r := range rs {
		mark := "[ ]"
		if r.Completed {
			mark = "[x]"
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s %s", mark, r.Title)), "0", "L", false)
		pdf.SetFont("Arial", "", 9)
		if r.Description != "" {
			pdf.MultiCell(0, 5, tr(r.Description), "0", "L", false)
		}
		pdf.MultiCell(0, 5, fmt.Sprintf("created %s, updated %s",
			r.CreatedAt.UTC().Format(time.RFC3339), r.UpdatedAt.UTC().Format(time.RFC3339)), "0", "L", false)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

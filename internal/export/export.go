// Package export renders a task projection as CSV, JSON or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nhle/tareas/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts csv, json or pdf in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or pdf)", s)
}

var header = []string{"id", "titulo", "prioridad", "estado", "grupo", "fecha_creacion", "favorito", "descripcion"}

// Write renders tasks to w. now stamps the PDF title line.
func Write(w io.Writer, format Format, tasks []model.Task, now time.Time) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, tasks)
	case FormatJSON:
		return writeJSON(w, tasks)
	case FormatPDF:
		return writePDF(w, tasks, now)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeCSV(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range tasks {
		row := []string{
			strconv.Itoa(t.ID),
			t.Title,
			string(t.Priority),
			string(t.Status),
			t.Group,
			t.CreationDate,
			strconv.FormatBool(t.Favorite),
			t.Description,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonTask adds the client-only favorite flag to the wire shape.
type jsonTask struct {
	model.Task
	Favorite bool `json:"favorito"`
}

func writeJSON(w io.Writer, tasks []model.Task) error {
	out := make([]jsonTask, len(tasks))
	for i, t := range tasks {
		out[i] = jsonTask{Task: t, Favorite: t.Favorite}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writePDF(w io.Writer, tasks []model.Task, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Tareas", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Tareas (%d) - %s", len(tasks), now.Format("2006-01-02 15:04"))))
	pdf.Ln(12)

	for _, t := range tasks {
		star := ""
		if t.Favorite {
			star = "* "
		}
		pdf.SetFont("Arial", "B", 11)
		head := fmt.Sprintf("%s#%d %s", star, t.ID, t.Title)
		pdf.MultiCell(0, 6, tr(head), "0", "L", false)

		pdf.SetFont("Arial", "", 9)
		meta := fmt.Sprintf("%s | %s | %s | %s",
			t.Priority.Label(), t.Status, t.GroupLabel(), t.CreationDate)
		pdf.MultiCell(0, 5, tr(meta), "0", "L", false)
		if d := strings.TrimSpace(t.Description); d != "" {
			pdf.MultiCell(0, 5, tr(d), "0", "L", false)
		}
		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

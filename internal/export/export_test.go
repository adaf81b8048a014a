package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/nhle/tareas/internal/model"
)

var sample = []model.Task{
	{ID: 1, Title: "Comprar café", Priority: model.PriorityHigh, Status: model.StatusActive, CreationDate: "2024-05-01", Favorite: true},
	{ID: 2, Title: "Informe, trimestral", Priority: model.PriorityLow, Status: model.StatusFinished, Group: "Work", CreationDate: "2024-05-02", Description: "línea 1\nlínea 2"},
}

var now = time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)

func TestWrite_CSV(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer

	is.NoErr(Write(&buf, FormatCSV, sample, now))

	rows, err := csv.NewReader(&buf).ReadAll()
	is.NoErr(err)
	is.Equal(len(rows), 3)
	is.Equal(rows[0], header)
	is.Equal(rows[1][1], "Comprar café")
	is.Equal(rows[1][6], "true")
	is.Equal(rows[2][1], "Informe, trimestral")
	is.Equal(rows[2][4], "Work")
	is.Equal(rows[2][7], "línea 1\nlínea 2")
}

func TestWrite_JSON(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer

	is.NoErr(Write(&buf, FormatJSON, sample, now))

	var got []map[string]any
	is.NoErr(json.Unmarshal(buf.Bytes(), &got))
	is.Equal(len(got), 2)
	is.Equal(got[0]["titulo"], "Comprar café")
	is.Equal(got[0]["favorito"], true)
	is.Equal(got[1]["favorito"], false)
}

func TestWrite_PDF(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer

	is.NoErr(Write(&buf, FormatPDF, sample, now))
	is.True(bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestParseFormat(t *testing.T) {
	is := is.New(t)

	f, err := ParseFormat(" PDF ")
	is.NoErr(err)
	is.Equal(f, FormatPDF)

	_, err = ParseFormat("xlsx")
	is.True(err != nil)
	is.True(Write(&bytes.Buffer{}, Format("xlsx"), nil, now) != nil)
}

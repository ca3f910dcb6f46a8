package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"surveycli/internal/config"
	"surveycli/pkg/contracts/domain"
)

// cutTable mirrors the shape of a single-answer cross-tabulation
func cutTable(t *testing.T) *domain.Table {
	t.Helper()
	tbl := domain.NewTable(
		domain.Key{"Region", "North"},
		domain.Key{"Region", "South*"},
		domain.Key{"Mean"},
	)
	tbl.Title = "Satisfied by region"
	require.NoError(t, tbl.AppendRow(domain.Key{"Satisfied?", "Yes"}, domain.Text("75%"), domain.Text("20%"), domain.Float(1.4)))
	require.NoError(t, tbl.AppendRow(domain.Key{"Satisfied?", "No"}, domain.Text("25%"), domain.Text("80%"), domain.Float(math.NaN())))
	return tbl
}

func freqTable(t *testing.T) *domain.Table {
	t.Helper()
	tbl := domain.NewTable(domain.Key{"Answer"}, domain.Key{"Count"}, domain.Key{"%"})
	require.NoError(t, tbl.AppendRow(nil, domain.Text("Yes"), domain.Int(2), domain.Text("67%")))
	require.NoError(t, tbl.AppendRow(nil, domain.Text("No"), domain.Int(1), domain.Text("33%")))
	return tbl
}

func TestFlatten(t *testing.T) {
	g := Flatten(cutTable(t))

	assert.Equal(t, 2, g.IndexCols)
	assert.Equal(t, [][]string{
		{"", "", "Region", "Region", ""},
		{"", "", "North", "South*", "Mean"},
	}, g.Header)
	assert.Equal(t, [][]string{
		{"Satisfied?", "Yes", "75%", "20%", "1.4"},
		{"Satisfied?", "No", "25%", "80%", ""},
	}, g.Body)
}

func TestFlattenPositional(t *testing.T) {
	g := Flatten(freqTable(t))

	assert.Zero(t, g.IndexCols)
	assert.Equal(t, [][]string{{"Answer", "Count", "%"}}, g.Header)
	assert.Equal(t, []string{"Yes", "2", "67%"}, g.Body[0])
	assert.Len(t, g.Records(), 3)
}

func TestWriteTableCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, cutTable(t)))

	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 5)
	assert.Equal(t, []string{"Satisfied by region"}, records[0][:1])
	assert.Equal(t, "South*", records[2][3])
	assert.Equal(t, "80%", records[4][3])
}

func TestCSVWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(&config.Paths{ExportDir: filepath.Join(dir, "exports")})

	t.Run("relative path goes to export dir", func(t *testing.T) {
		require.NoError(t, w.WriteTable("freq.csv", freqTable(t)))

		data, err := os.ReadFile(filepath.Join(dir, "exports", "freq.csv"))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, utf8BOM))
		assert.Contains(t, string(data), "Answer,Count,%")
	})

	t.Run("several tables", func(t *testing.T) {
		path := filepath.Join(dir, "report.csv")
		require.NoError(t, w.WriteTables(path, []*domain.Table{freqTable(t), cutTable(t)}, WriteOptions{}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.False(t, bytes.HasPrefix(data, utf8BOM))

		r := csv.NewReader(bytes.NewReader(data))
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		require.NoError(t, err)
		// the reader skips the blank separator row
		assert.Len(t, records, 3+5)
		assert.Contains(t, string(data), "\n\n")
	})
}

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	untitled := freqTable(t)
	dup := cutTable(t)

	require.NoError(t, NewXLSXWriter().Save(path, []*domain.Table{cutTable(t), untitled, dup}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Satisfied by region", "Table 2", "Satisfied by region (2)"}, f.GetSheetList())

	sheet := "Satisfied by region"
	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Satisfied by region", title)

	// header rows start at row 3
	region, err := f.GetCellValue(sheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "Region", region)

	merged, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "C3", merged[0].GetStartAxis())
	assert.Equal(t, "D3", merged[0].GetEndAxis())

	yes, err := f.GetCellValue(sheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "Yes", yes)

	mean, err := f.GetCellValue(sheet, "E6")
	require.NoError(t, err)
	assert.Empty(t, mean)

	count, err := f.GetCellValue("Table 2", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestXLSXWriterWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter().Write(&buf, []*domain.Table{freqTable(t)}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	assert.Error(t, NewXLSXWriter().Write(&buf, nil))
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "Q1_ agree", sheetName("Q1/ agree", 0, used))
	assert.Equal(t, "Table 2", sheetName("  ", 1, used))

	long := strings.Repeat("x", 40)
	first := sheetName(long, 2, used)
	assert.Len(t, first, maxSheetName)
	second := sheetName(long, 3, used)
	assert.Len(t, second, maxSheetName)
	assert.True(t, strings.HasSuffix(second, " (2)"))
}

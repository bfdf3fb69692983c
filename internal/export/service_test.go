package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contract-extractor/constants"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
)

func sampleRows() []Row {
	rec := entity.NewRecordBuilder().
		Set(constants.ContractNumber, "2023/045", entity.SourcePattern).
		Set(constants.TotalAmount, "12500.50", entity.SourcePattern).
		Set(constants.Location, "Paris, France", entity.SourceQA).
		Build()
	return []Row{
		{Filename: "a.pdf", Record: rec},
		{Filename: "b.pdf", Err: "document has no extractable text"},
	}
}

func TestHeaders(t *testing.T) {
	h := Headers()
	require.Len(t, h, 10)
	assert.Equal(t, "Contract Number", h[0])
	assert.Equal(t, "Location", h[7])
	assert.Equal(t, []string{ColFilename, ColError}, h[8:])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewService(nil).WriteCSV(&buf, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Headers(), records[0])
	assert.Equal(t, []string{"2023/045", "", "", "", "12500.50", "", "", "Paris, France", "a.pdf", ""}, records[1])
	assert.Equal(t, "b.pdf", records[2][8])
	assert.Equal(t, "document has no extractable text", records[2][9])
	assert.Equal(t, "", records[2][0])
}

func TestXLSX(t *testing.T) {
	data, err := NewService(nil).XLSX(sampleRows())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers(), rows[0])
	assert.Equal(t, "12500.50", rows[1][4])
	assert.Equal(t, "a.pdf", rows[1][8])
}

func TestWriteFilePicksFormat(t *testing.T) {
	dir := t.TempDir()
	s := NewService(nil)

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, s.WriteFile(csvPath, sampleRows()))
	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("Contract Number,")))

	xlsxPath := filepath.Join(dir, "out.XLSX")
	require.NoError(t, s.WriteFile(xlsxPath, sampleRows()))
	b, err = os.ReadFile(xlsxPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("PK")))

	assert.Equal(t, FormatCSV, FormatForPath("x.txt"))
	assert.Equal(t, FormatXLSX, FormatForPath("x.xlsx"))
}

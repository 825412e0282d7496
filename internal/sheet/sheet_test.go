package sheet

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecode_XLSX(t *testing.T) {
	data := buildXLSX(t, [][]any{
		{"Cartola", nil, nil},
		{},
		{"Fecha", "Descripción", "Cargo"},
		{45366, "COMPRA  SUPERMERCADO LIDER", -45000},
	})

	s, err := Decode("bancochile.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, s.Format)
	assert.Equal(t, "Sheet1", s.Name)
	require.Equal(t, 4, s.Len())

	assert.Equal(t, "Cartola", s.Cell(0, 0))
	assert.True(t, s.RowEmpty(1))
	assert.Equal(t, "Descripción", s.Cell(2, 1))
	assert.Equal(t, "45366", s.Cell(3, 0), "raw serial, not display format")
	assert.Equal(t, "COMPRA SUPERMERCADO LIDER", s.Cell(3, 1), "whitespace collapsed")
	assert.Equal(t, "-45000", s.Cell(3, 2))
}

func TestDecode_CSVSemicolon(t *testing.T) {
	data := []byte("Fecha;Descripción;Monto\n15/03/2024;COMPRA LIDER;-45.000\n")

	s, err := Decode("bci.csv", data)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, s.Format)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"15/03/2024", "COMPRA LIDER", "-45.000"}, s.Rows[1])
}

func TestDecode_CSVComma(t *testing.T) {
	data := []byte("\xEF\xBB\xBFFecha,Detalle,Cargo\n15/03/2024,\"PAGO, ENEL\",10990\n")

	s, err := Decode("santander.csv", data)
	require.NoError(t, err)
	assert.Equal(t, "Fecha", s.Cell(0, 0), "BOM stripped")
	assert.Equal(t, "PAGO, ENEL", s.Cell(1, 1))
}

func TestDecode_Latin1(t *testing.T) {
	// "Descripción" with ó as 0xF3.
	data := []byte("Fecha;Descripci\xf3n;Cargo\n15/03/2024;AGUAS ANDINAS;-12000\n")

	s, err := Decode("bancoestado.csv", data)
	require.NoError(t, err)
	assert.Equal(t, "Descripción", s.Cell(0, 1))
}

func TestDecode_XLS(t *testing.T) {
	data, err := os.ReadFile("../../testdata/bancoestado_marzo.xls")
	require.NoError(t, err)

	s, err := Decode("bancoestado_marzo.xls", data)
	require.NoError(t, err)
	assert.Equal(t, FormatXLS, s.Format)
	assert.Equal(t, "Cartola", s.Name)
	require.Equal(t, 6, s.Len())

	assert.Equal(t, "Saldo contable", s.Cell(1, 0))
	assert.Equal(t, "350000", s.Cell(1, 1))
	assert.Equal(t, []string{"Fecha", "N° Operación", "Descripción", "Monto"}, s.Rows[2])
	assert.Equal(t, []string{"01/03/2024", "778812", "COMPRA COPEC", "-30000"}, s.Rows[3])
}

func TestDecode_XLSDateCells(t *testing.T) {
	data, err := os.ReadFile("../../testdata/bancoestado_fechas.xls")
	require.NoError(t, err)

	_, err = Decode("bancoestado_fechas.xls", data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.ErrorIs(t, err, ErrDateCells)
	assert.Contains(t, err.Error(), "row 4, column 1")
}

func TestDecode_XLSNoWorkbookStream(t *testing.T) {
	data, err := os.ReadFile("../../testdata/bancoestado_marzo.xls")
	require.NoError(t, err)
	// Rename the directory entry so the container has no Workbook stream.
	broken := append([]byte(nil), data...)
	copy(broken[1024+128:], []byte{'X', 0})

	_, err = Decode("otro.xls", broken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestTruncatedDateCell(t *testing.T) {
	rows := [][]string{
		{"Cartola"},
		{"Fecha Operación", "Monto"},
		{"15/03/2024", "2024.03"},
		{"2024.03", "-1000"},
	}
	col, row := truncatedDateCell(rows)
	assert.Equal(t, 0, col)
	assert.Equal(t, 3, row)

	col, _ = truncatedDateCell(rows[:3])
	assert.Equal(t, -1, col, "only the date column is checked")
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode("empty.csv", []byte("  \n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestDecode_BrokenZip(t *testing.T) {
	_, err := Decode("broken.xlsx", []byte("PK\x03\x04garbage"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.Contains(t, err.Error(), "broken.xlsx")
}

func TestCell_OutOfRange(t *testing.T) {
	s := &Sheet{Rows: [][]string{{"a"}, {"b", "c"}}}
	assert.Equal(t, "", s.Cell(0, 1))
	assert.Equal(t, "", s.Cell(5, 0))
	assert.Equal(t, "", s.Cell(-1, 0))
	assert.Equal(t, "c", s.Cell(1, 1))
	assert.True(t, s.RowEmpty(9))
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter([]byte("a;b;c\n1;2,5;3\n")))
	assert.Equal(t, ',', sniffDelimiter([]byte("a,b,c\n1,2,3\n")))
	assert.Equal(t, '\t', sniffDelimiter([]byte("a\tb\tc\n1\t2\t3\n")))
}

// Package export genera libros de hoja de cálculo (.xlsx) con las filas de exportación del libro de inventario.
package export

import (
	"io"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize"
	appinventory "github.com/jhoicas/perecederos-api/internal/application/inventory"
)

// ContentTypeXLSX tipo MIME de un libro .xlsx.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Nombres de hoja.
const (
	SheetOperations = "Diario de operaciones"
	SheetStock      = "Stock actual"
)

const defaultSheet = "Sheet1"

var operationHeaders = []string{
	"ID", "Tipo de operación", "Número de lote", "Producto",
	"Fecha de operación", "Cantidad", "Causa", "Documento", "Nota",
}

var stockHeaders = []string{"Código", "Nombre", "Stock actual"}

// WriteOperations escribe el diario en un libro de una sola hoja.
func WriteOperations(w io.Writer, rows []appinventory.OperationExportRow) error {
	f := newBook(SheetOperations, operationHeaders)
	for i, r := range rows {
		setRow(f, SheetOperations, i+2, []interface{}{
			r.ID,
			r.TypeLabel,
			r.BatchNumber,
			r.ProductName,
			r.OccurredAt.UTC().Format("2006-01-02 15:04:05"),
			r.Quantity.InexactFloat64(),
			r.Reason,
			r.Document,
			r.Note,
		})
	}
	return f.Write(w)
}

// WriteStockLevels escribe código, nombre y stock actual por producto.
func WriteStockLevels(w io.Writer, rows []appinventory.StockExportRow) error {
	f := newBook(SheetStock, stockHeaders)
	for i, r := range rows {
		setRow(f, SheetStock, i+2, []interface{}{r.Code, r.Name, r.Quantity.InexactFloat64()})
	}
	return f.Write(w)
}

func newBook(sheet string, headers []string) *excelize.File {
	f := excelize.NewFile()
	f.SetSheetName(defaultSheet, sheet)
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	setRow(f, sheet, 1, values)
	return f
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for col, v := range values {
		f.SetCellValue(sheet, cellName(col, row), v)
	}
}

// cellName convierte columna (base 0) y fila (base 1) a referencia A1.
func cellName(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name + strconv.Itoa(row)
}

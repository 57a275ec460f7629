package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet every monthly workbook carries.
const SheetName = "Отчеты"

var headerRow = []string{"Дата", "Фамилия Имя", "Место работы", "Вид работы", "Количество часов"}

// Writer creates monthly XLSX workbooks and appends report rows.
type Writer struct {
	dir    string
	prefix string
}

// NewWriter builds a Writer rooted at dir. Workbook files are named
// {prefix}_WA_{year}_{month}.xlsx.
func NewWriter(dir, prefix string) *Writer {
	return &Writer{dir: dir, prefix: prefix}
}

// Name returns the workbook name for a month, without extension.
func (w *Writer) Name(year, month int) string {
	return fmt.Sprintf("%s_WA_%d_%02d", w.prefix, year, month)
}

// Path returns the on-disk location of a workbook.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+".xlsx")
}

// Ensure creates the workbook with a styled header row when it does
// not exist yet and returns its path.
func (w *Writer) Ensure(name string) (string, error) {
	path := w.Path(name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat workbook: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(SheetName); err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("header style: %w", err)
	}
	for col, header := range headerRow {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
			return "", fmt.Errorf("style header: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

// Append writes rows below the existing content and returns the
// 1-based row number the first new row landed on.
func (w *Writer) Append(name string, rows [][]any) (int, error) {
	path, err := w.Ensure(name)
	if err != nil {
		return 0, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	existing, err := f.GetRows(SheetName)
	if err != nil {
		return 0, fmt.Errorf("read workbook: %w", err)
	}
	firstRow := len(existing) + 1
	if firstRow < 2 {
		firstRow = 2
	}

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, firstRow+i)
			if err != nil {
				return 0, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return 0, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	if err := f.Save(); err != nil {
		return 0, fmt.Errorf("save workbook: %w", err)
	}
	return firstRow, nil
}

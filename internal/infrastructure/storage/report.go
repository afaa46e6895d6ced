package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"spot-counter/internal/domain/entity"
	"spot-counter/internal/domain/port"
)

const (
	LedgerFileName = "parameter and values.txt"
	TableFileName  = "image_counts.xlsx"
	tableSheet     = "Sheet1"
)

// FileReport ведёт текстовый журнал партии и пишет итоговую таблицу xlsx.
// Строки журнала дописываются по мере обработки, так что при сбое
// уже посчитанные изображения остаются в файле.
type FileReport struct {
	ledger     *os.File
	ledgerPath string
	tablePath  string
}

// NewFileReport создаёт пустой отчёт; файлы появляются в Begin
func NewFileReport() *FileReport {
	return &FileReport{}
}

// Begin создаёт каталог и журнал с таблицей параметров
func (r *FileReport) Begin(outputDir string, params entity.DetectionParams) error {
	if r.ledger != nil {
		return errors.New("report already started")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	r.ledgerPath = filepath.Join(outputDir, LedgerFileName)
	r.tablePath = filepath.Join(outputDir, TableFileName)

	f, err := os.Create(r.ledgerPath)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	if _, err := f.WriteString(formatParams(params)); err != nil {
		f.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	r.ledger = f
	return nil
}

// Record дописывает строку «имя: количество»
func (r *FileReport) Record(result entity.ImageResult) error {
	if r.ledger == nil {
		return errors.New("report is not started")
	}
	if _, err := fmt.Fprintf(r.ledger, "%s: %d\n", result.Name, result.Count); err != nil {
		return fmt.Errorf("write ledger line: %w", err)
	}
	return nil
}

// Finish пишет таблицу подсчётов и закрывает журнал
func (r *FileReport) Finish(results []entity.ImageResult) error {
	if r.ledger == nil {
		return errors.New("report is not started")
	}
	tableErr := writeTable(r.tablePath, results)
	closeErr := r.ledger.Close()
	r.ledger = nil

	if tableErr != nil {
		return tableErr
	}
	if closeErr != nil {
		return fmt.Errorf("close ledger: %w", closeErr)
	}
	return nil
}

func (r *FileReport) LedgerPath() string { return r.ledgerPath }

func (r *FileReport) TablePath() string { return r.tablePath }

// formatParams формирует шапку журнала
func formatParams(params entity.DetectionParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-31s%-10s%s\n", "Parameter", "Value", "Description")
	b.WriteString(strings.Repeat("-", 56) + "\n")
	for _, line := range params.Describe() {
		fmt.Fprintf(&b, "%-31s%-10s%s\n", line.Name, line.Value, line.Description)
	}
	b.WriteString("\nImage counts:\n")
	return b.String()
}

// writeTable сохраняет строки {Image, Count} в xlsx
func writeTable(path string, results []entity.ImageResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(tableSheet, "A1", &[]interface{}{"Image", "Count"}); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	for i, res := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(tableSheet, cell, &[]interface{}{res.Name, res.Count}); err != nil {
			return fmt.Errorf("write table row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save table: %w", err)
	}
	return nil
}

var _ port.ReportWriter = (*FileReport)(nil)

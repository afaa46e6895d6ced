package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"spot-counter/internal/domain/entity"
)

func TestFileReport_LedgerAndTable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	report := NewFileReport()
	params := entity.DefaultDetectionParams()

	require.NoError(t, report.Begin(dir, params))
	results := []entity.ImageResult{{Name: "a", Count: 3}, {Name: "b", Count: 0}}
	for _, r := range results {
		require.NoError(t, report.Record(r))
	}
	require.NoError(t, report.Finish(results))

	require.Equal(t, filepath.Join(dir, LedgerFileName), report.LedgerPath())
	require.Equal(t, "parameter and values.txt", filepath.Base(report.LedgerPath()))
	require.Equal(t, filepath.Join(dir, TableFileName), report.TablePath())

	data, err := os.ReadFile(report.LedgerPath())
	require.NoError(t, err)
	ledger := string(data)

	require.True(t, strings.HasPrefix(ledger, "Parameter"))
	for _, line := range params.Describe() {
		require.Contains(t, ledger, line.Name)
	}
	require.Contains(t, ledger, "MARKER_COLOR")
	require.Contains(t, ledger, "#0000FF")
	require.Contains(t, ledger, "BLOB_MIN_REPEAT")
	require.Contains(t, ledger, "\n\nImage counts:\na: 3\nb: 0\n")

	f, err := excelize.OpenFile(report.TablePath())
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"Image", "Count"}, {"a", "3"}, {"b", "0"}}, rows)
}

func TestFileReport_EmptyBatch(t *testing.T) {
	dir := t.TempDir()
	report := NewFileReport()

	require.NoError(t, report.Begin(dir, entity.DefaultDetectionParams()))
	require.NoError(t, report.Finish(nil))

	data, err := os.ReadFile(report.LedgerPath())
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(data), "Image counts:\n"))

	f, err := excelize.OpenFile(report.TablePath())
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"Image", "Count"}}, rows)
}

func TestFileReport_Misuse(t *testing.T) {
	report := NewFileReport()
	require.Error(t, report.Record(entity.ImageResult{Name: "a"}))
	require.Error(t, report.Finish(nil))

	require.NoError(t, report.Begin(t.TempDir(), entity.DefaultDetectionParams()))
	require.Error(t, report.Begin(t.TempDir(), entity.DefaultDetectionParams()))
	require.NoError(t, report.Finish(nil))
}

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"wildberries/catalog/internal/domain"
)

// MaxSheetNameLength is the Excel limit on sheet names, in characters
const MaxSheetNameLength = 31

var ErrNothingToExport = errors.New("no root category has rows to export")

var header = []interface{}{"id", "name", "level"}

// Layout controls sheet naming and column widths
type Layout struct {
	SheetSuffix string
	BaseWidth   float64 // id and level columns
	NameWidth   float64
}

// DefaultLayout matches the historical workbook
func DefaultLayout() Layout {
	return Layout{
		SheetSuffix: " – Категории",
		BaseWidth:   12,
		NameWidth:   60,
	}
}

var invalidSheetChars = strings.NewReplacer(
	"[", "_", "]", "_", ":", "_", "*", "_", "?", "_", "/", "_", "\\", "_",
)

// SafeSheetName builds "<root name><suffix>" within the Excel limit.
// The root name is cut first so the suffix survives.
func SafeSheetName(root domain.RootKey, suffix string) string {
	name := strings.TrimSpace(root.Name)
	if name == "" {
		name = strconv.FormatInt(root.ID, 10)
	}
	name = strings.Trim(invalidSheetChars.Replace(name), "'")
	suffix = invalidSheetChars.Replace(suffix)

	room := MaxSheetNameLength - utf8.RuneCountInString(suffix)
	if room < 0 {
		room = 0
	}
	return truncate(truncate(name, room)+suffix, MaxSheetNameLength)
}

// uniqueSheetName appends " (n)" when name is taken; Excel compares names case-insensitively
func uniqueSheetName(name string, used map[string]struct{}) string {
	candidate := name
	for n := 2; ; n++ {
		key := strings.ToLower(candidate)
		if _, ok := used[key]; !ok {
			used[key] = struct{}{}
			return candidate
		}
		tag := fmt.Sprintf(" (%d)", n)
		candidate = truncate(name, MaxSheetNameLength-utf8.RuneCountInString(tag)) + tag
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// WriteWorkbook writes one sheet per root. Roots without rows are skipped;
// if none are left ErrNothingToExport is returned and no file is created.
func WriteWorkbook(path string, sheets []domain.RootRows, layout Layout) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("⚠️ Failed to close workbook: %v", err)
		}
	}()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]struct{}, len(sheets))
	written := 0

	for _, sheet := range sheets {
		if len(sheet.Rows) == 0 {
			continue
		}

		name := uniqueSheetName(SafeSheetName(sheet.Root, layout.SheetSuffix), used)
		if written == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to rename sheet to %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, sheet.Rows, layout); err != nil {
			return err
		}
		written++
	}

	if written == 0 {
		return ErrNothingToExport
	}

	f.SetActiveSheet(0)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	log.Debugf("Workbook %s written with %d sheets", path, written)
	return nil
}

func writeSheet(f *excelize.File, name string, rows []domain.ExportRow, layout Layout) error {
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", name, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{row.ID, row.Name, row.Level}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, name, err)
		}
	}

	widths := []struct {
		col   string
		width float64
	}{
		{"A", layout.BaseWidth},
		{"B", layout.NameWidth},
		{"C", layout.BaseWidth},
	}
	for _, w := range widths {
		if w.width <= 0 {
			continue
		}
		if err := f.SetColWidth(name, w.col, w.col, w.width); err != nil {
			return fmt.Errorf("failed to set width of column %s in %q: %w", w.col, name, err)
		}
	}

	return nil
}

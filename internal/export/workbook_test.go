package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wildberries/catalog/internal/domain"
)

func TestSafeSheetName(t *testing.T) {
	suffix := DefaultLayout().SheetSuffix

	tests := []struct {
		name string
		root domain.RootKey
		want string
	}{
		{"short", domain.RootKey{ID: 1, Name: "Женщинам"}, "Женщинам – Категории"},
		{"long name is cut before suffix", domain.RootKey{ID: 2, Name: "Товары для взрослых и детей"}, "Товары для взрослых – Категории"},
		{"invalid characters", domain.RootKey{ID: 3, Name: "Дом/Сад"}, "Дом_Сад – Категории"},
		{"empty name uses id", domain.RootKey{ID: 4, Name: "  "}, "4 – Категории"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeSheetName(tt.root, suffix)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxSheetNameLength)
		})
	}
}

func TestSafeSheetNameLongSuffix(t *testing.T) {
	got := SafeSheetName(domain.RootKey{ID: 1, Name: "Root"}, " - a suffix that is far too long for excel")
	assert.Equal(t, MaxSheetNameLength, utf8.RuneCountInString(got))
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]struct{}{}
	base := "Товары для взрослых – Категории"

	assert.Equal(t, base, uniqueSheetName(base, used))

	second := uniqueSheetName(base, used)
	assert.Equal(t, "Товары для взрослых – Катег (2)", second)
	assert.Equal(t, MaxSheetNameLength, utf8.RuneCountInString(second))

	assert.Equal(t, "Обувь (2)", uniqueSheetName("Обувь", map[string]struct{}{"обувь": {}}))
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wb_categories.xlsx")
	sheets := []domain.RootRows{
		{
			Root: domain.RootKey{ID: 1, Name: "Женщинам"},
			Rows: []domain.ExportRow{
				{ID: 10, Name: "Платья", Level: 1},
				{ID: 69, Name: "Платья", Level: domain.SubjectLevel},
			},
		},
		{Root: domain.RootKey{ID: 2, Name: "Пусто"}},
		{
			Root: domain.RootKey{ID: 3, Name: "Обувь"},
			Rows: []domain.ExportRow{{ID: 30, Name: "Кроссовки", Level: 1}},
		},
	}

	require.NoError(t, WriteWorkbook(path, sheets, DefaultLayout()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Женщинам – Категории", "Обувь – Категории"}, f.GetSheetList())

	rows, err := f.GetRows("Женщинам – Категории")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "name", "level"},
		{"10", "Платья", "1"},
		{"69", "Платья", "99"},
	}, rows)

	for col, want := range map[string]float64{"A": 12, "B": 60, "C": 12} {
		width, err := f.GetColWidth("Обувь – Категории", col)
		require.NoError(t, err)
		assert.InDelta(t, want, width, 0.01, col)
	}
}

func TestWriteWorkbookNothingToExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wb_categories.xlsx")

	err := WriteWorkbook(path, []domain.RootRows{{Root: domain.RootKey{ID: 1, Name: "Пусто"}}}, DefaultLayout())
	require.True(t, errors.Is(err, ErrNothingToExport))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteWorkbookDuplicateRootNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wb.xlsx")
	rows := []domain.ExportRow{{ID: 1, Name: "x", Level: 1}}
	sheets := []domain.RootRows{
		{Root: domain.RootKey{ID: 1, Name: "Акции"}, Rows: rows},
		{Root: domain.RootKey{ID: 2, Name: "Акции"}, Rows: rows},
	}

	require.NoError(t, WriteWorkbook(path, sheets, DefaultLayout()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Акции – Категории", "Акции – Категории (2)"}, f.GetSheetList())
}

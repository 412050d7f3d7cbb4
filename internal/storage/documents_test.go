package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildberries/catalog/internal/domain"
	"wildberries/catalog/internal/storage"
)

func TestWriteMenuPrettyPrintsAndKeepsUnicode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "menu.json")
	raw := []byte(`[{"id":1,"name":"Женщинам","url":"/catalog/zhenshchinam","childs":[{"id":2,"name":"Платья","url":"/catalog/platya","searchQuery":"платья"}]}]`)

	require.NoError(t, storage.WriteMenu(path, raw))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Женщинам")
	assert.NotContains(t, text, `\u04`)
	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"id\": 1,"))

	nodes, err := storage.LoadMenu(path)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "платья", nodes[0].Children[0].SearchQuery)
}

func TestWriteMenuRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "menu.json")
	require.Error(t, storage.WriteMenu(path, []byte("{")))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLeafRecordsRoundTrip(t *testing.T) {
	t.Parallel()

	failed := domain.NewLeafRecord(domain.LeafDescriptor{LeafID: 2, LeafName: "Обувь", LeafFullURL: "https://www.wildberries.ru/catalog/obuv"})
	failed.Fail(errors.New("HTTP error: 503 Service Unavailable"))

	records := []domain.LeafRecord{
		{
			LeafID: 1, LeafName: "Платья", LeafFullURL: "https://www.wildberries.ru/catalog/platya",
			Subjects: []domain.Subject{{ID: 69, Name: "Платья"}, {ID: 70, Name: "Сарафаны & туники"}},
		},
		failed,
		domain.NewLeafRecord(domain.LeafDescriptor{LeafID: 3, LeafName: "Пусто"}),
	}

	path := filepath.Join(t.TempDir(), "out", "leaf_subjects.json")
	require.NoError(t, storage.WriteLeafRecords(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Сарафаны & туники")
	assert.Contains(t, string(data), `"error": null`)

	loaded, err := storage.LoadLeafRecords(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, records, loaded)

	total, ok := storage.LeafStats(loaded)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, ok)
}

func TestWriteLeafRecordsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "leaf_subjects.json")
	require.NoError(t, storage.WriteLeafRecords(path, nil))

	loaded, err := storage.LoadLeafRecords(path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadMissingFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := storage.LoadMenu(filepath.Join(dir, "menu.json"))
	require.Error(t, err)

	_, err = storage.LoadLeafRecords(filepath.Join(dir, "leaf_subjects.json"))
	require.Error(t, err)
}

func TestWrittenDocumentsAreWorldReadable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	menuPath := filepath.Join(dir, "menu.json")
	recordsPath := filepath.Join(dir, "leaf_subjects.json")

	require.NoError(t, storage.WriteMenu(menuPath, []byte(`[]`)))
	require.NoError(t, storage.WriteLeafRecords(recordsPath, nil))

	for _, path := range []string{menuPath, recordsPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), path)
	}
}

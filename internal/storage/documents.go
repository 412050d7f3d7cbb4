package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"wildberries/catalog/internal/domain"
)

const indent = "  "

// WriteMenu stores the captured menu document pretty-printed. The raw bytes
// are re-indented, never re-encoded, so non-ASCII text stays as is.
func WriteMenu(path string, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", indent); err != nil {
		return fmt.Errorf("menu is not valid JSON: %w", err)
	}
	buf.WriteByte('\n')

	return writeFile(path, buf.Bytes())
}

// LoadMenu reads the menu forest from path
func LoadMenu(path string) ([]domain.CatalogNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu: %w", err)
	}

	var nodes []domain.CatalogNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("failed to decode menu %s: %w", path, err)
	}
	return nodes, nil
}

// WriteLeafRecords stores records in the order given
func WriteLeafRecords(path string, records []domain.LeafRecord) error {
	if records == nil {
		records = []domain.LeafRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode leaf records: %w", err)
	}

	return writeFile(path, buf.Bytes())
}

// LoadLeafRecords reads records written by WriteLeafRecords
func LoadLeafRecords(path string) ([]domain.LeafRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaf records: %w", err)
	}

	var records []domain.LeafRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode leaf records %s: %w", path, err)
	}

	for i := range records {
		if records[i].Subjects == nil {
			records[i].Subjects = []domain.Subject{}
		}
	}
	return records, nil
}

// LeafStats counts all records and those without an error
func LeafStats(records []domain.LeafRecord) (total, ok int) {
	for _, r := range records {
		if r.OK() {
			ok++
		}
	}
	return len(records), ok
}

// writeFile replaces path atomically via a temp file in the same directory
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	// CreateTemp uses 0600, documents are 0644
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode of %s: %w", path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

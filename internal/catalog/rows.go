package catalog

import (
	"wildberries/catalog/internal/domain"
)

// SubjectsByLeaf indexes successful records by leaf id.
// Failed records are left out: their subjects are unknown, not empty.
func SubjectsByLeaf(records []domain.LeafRecord) map[int64][]domain.Subject {
	out := make(map[int64][]domain.Subject, len(records))
	for _, r := range records {
		if !r.OK() {
			continue
		}
		if r.Subjects == nil {
			out[r.LeafID] = []domain.Subject{}
			continue
		}
		out[r.LeafID] = r.Subjects
	}
	return out
}

// BuildRows flattens paths into export rows: ancestors, the leaf, then its
// subjects at SubjectLevel. Depth 0 is never emitted. Ancestors shared by
// sibling paths are repeated once per path.
func BuildRows(paths []domain.Path, subjectsByLeaf map[int64][]domain.Subject) []domain.ExportRow {
	rows := make([]domain.ExportRow, 0)

	for _, path := range paths {
		if len(path) == 0 {
			continue
		}

		leaf := path.Leaf()
		for _, step := range path[:len(path)-1] {
			if step.Depth > 0 {
				rows = append(rows, domain.ExportRow{ID: step.ID, Name: step.Name, Level: step.Depth})
			}
		}

		if leaf.Depth > 0 {
			rows = append(rows, domain.ExportRow{ID: leaf.ID, Name: leaf.Name, Level: leaf.Depth})
		}

		for _, s := range subjectsByLeaf[leaf.ID] {
			rows = append(rows, domain.ExportRow{ID: s.ID, Name: s.Name, Level: domain.SubjectLevel})
		}
	}

	return rows
}

// BuildSheets builds the rows of every root, skipping roots without rows
func BuildSheets(forest []domain.CatalogNode, records []domain.LeafRecord) []domain.RootRows {
	subjects := SubjectsByLeaf(records)

	out := make([]domain.RootRows, 0, len(forest))
	for _, rp := range BuildPathsByRoot(forest) {
		rows := BuildRows(rp.Paths, subjects)
		if len(rows) == 0 {
			continue
		}
		out = append(out, domain.RootRows{Root: rp.Root, Rows: rows})
	}
	return out
}

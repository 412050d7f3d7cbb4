package domain

// SubjectLevel is the level value of rows that carry a fetched Subject
const SubjectLevel = 99

// PathStep is one node on a root-to-leaf path
type PathStep struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Depth int    `json:"depth"` // 0 for the root
}

// Path is the ordered list of steps from a root down to one leaf
type Path []PathStep

// Leaf returns the last step of the path
func (p Path) Leaf() PathStep {
	return p[len(p)-1]
}

// RootKey identifies a top-level category
type RootKey struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RootPaths holds every leaf path under one root
type RootPaths struct {
	Root  RootKey `json:"root"`
	Paths []Path  `json:"paths"`
}

// ExportRow is one row of the tabular export
type ExportRow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// RootRows holds the export rows of one root category
type RootRows struct {
	Root RootKey     `json:"root"`
	Rows []ExportRow `json:"rows"`
}

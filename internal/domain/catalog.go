package domain

import (
	"encoding/json"
	"strings"
)

// CatalogPathPrefix marks menu entries that are real catalog listings
const CatalogPathPrefix = "/catalog"

// CatalogNode is one entry of the site main menu
type CatalogNode struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	SearchQuery string        `json:"searchQuery,omitempty"`
	Children    []CatalogNode `json:"childs,omitempty"` // Site format uses "childs"
}

// UnmarshalJSON accepts both "childs" (site format) and "children"
func (n *CatalogNode) UnmarshalJSON(data []byte) error {
	type plain CatalogNode
	var aux struct {
		plain
		AltChildren []CatalogNode `json:"children"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*n = CatalogNode(aux.plain)
	if len(n.Children) == 0 && len(aux.AltChildren) > 0 {
		n.Children = aux.AltChildren
	}
	return nil
}

func (n CatalogNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsEligible reports whether a leaf should be queried for subjects
func (n CatalogNode) IsEligible() bool {
	return strings.HasPrefix(n.URL, CatalogPathPrefix) && n.SearchQuery != ""
}

// LeafDescriptor is the fetch-ready view of an eligible leaf
type LeafDescriptor struct {
	LeafID      int64  `json:"leaf_id"`
	LeafName    string `json:"leaf_name"`
	LeafFullURL string `json:"leaf_full_url"`
	SearchQuery string `json:"search_query"`
}

// NewLeafDescriptor resolves a root-relative node URL against baseURL
func NewLeafDescriptor(node CatalogNode, baseURL string) LeafDescriptor {
	leafURL := strings.TrimSpace(node.URL)
	if strings.HasPrefix(leafURL, "/") {
		leafURL = strings.TrimRight(baseURL, "/") + leafURL
	}

	return LeafDescriptor{
		LeafID:      node.ID,
		LeafName:    strings.TrimSpace(node.Name),
		LeafFullURL: leafURL,
		SearchQuery: node.SearchQuery,
	}
}

package catalog

import (
	"wildberries/catalog/internal/domain"
)

// IterLeaves returns every node without children.
// Traversal is an explicit-stack DFS; the order is not part of the contract.
func IterLeaves(forest []domain.CatalogNode) []domain.CatalogNode {
	out := make([]domain.CatalogNode, 0)

	stack := make([]domain.CatalogNode, len(forest))
	copy(stack, forest)

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.IsLeaf() {
			out = append(out, node)
			continue
		}
		stack = append(stack, node.Children...)
	}

	return out
}

// SelectEligibleLeaves keeps the leaves under /catalog that carry a search query
func SelectEligibleLeaves(forest []domain.CatalogNode, baseURL string) []domain.LeafDescriptor {
	out := make([]domain.LeafDescriptor, 0)
	for _, node := range IterLeaves(forest) {
		if node.IsEligible() {
			out = append(out, domain.NewLeafDescriptor(node, baseURL))
		}
	}
	return out
}

// BuildPathsByRoot walks the forest again keeping ancestry, which leaf
// selection throws away. Roots keep the order of their first appearance.
func BuildPathsByRoot(forest []domain.CatalogNode) []domain.RootPaths {
	out := make([]domain.RootPaths, 0, len(forest))
	index := make(map[domain.RootKey]int, len(forest))

	for _, root := range forest {
		key := domain.RootKey{ID: root.ID, Name: root.Name}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, domain.RootPaths{Root: key, Paths: make([]domain.Path, 0)})
		}

		out[i].Paths = walk(root, 0, nil, out[i].Paths)
	}

	return out
}

func walk(node domain.CatalogNode, depth int, acc domain.Path, paths []domain.Path) []domain.Path {
	path := make(domain.Path, len(acc), len(acc)+1)
	copy(path, acc)
	path = append(path, domain.PathStep{ID: node.ID, Name: node.Name, Depth: depth})

	if node.IsLeaf() {
		return append(paths, path)
	}

	for _, child := range node.Children {
		paths = walk(child, depth+1, path, paths)
	}
	return paths
}

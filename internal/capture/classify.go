package capture

import (
	"encoding/json"
	"strings"
)

// shapeProbe is how many leading elements LooksLikeMenu inspects
const shapeProbe = 5

// IsMenuURL is a cheap URL classifier for the main-menu document
func IsMenuURL(url string, hints []string) bool {
	if !strings.HasSuffix(url, ".json") {
		return false
	}
	for _, h := range hints {
		if !strings.Contains(url, h) {
			return false
		}
	}
	return true
}

// IsMenuResourceType accepts XHR and fetch requests only
func IsMenuResourceType(resourceType string) bool {
	switch strings.ToLower(resourceType) {
	case "xhr", "fetch":
		return true
	default:
		return false
	}
}

// LooksLikeMenu decodes raw into a generic value and checks the menu shape:
// an array where one of the first elements is an object with id and name.
// Anything that does not decode is simply not a menu.
func LooksLikeMenu(raw []byte) bool {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return false
	}

	items, ok := generic.([]any)
	if !ok {
		return false
	}

	for _, item := range items[:min(len(items), shapeProbe)] {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		_, hasID := obj["id"]
		_, hasName := obj["name"]
		if hasID && hasName {
			return true
		}
	}
	return false
}

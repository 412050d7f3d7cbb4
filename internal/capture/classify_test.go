package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMenuURL(t *testing.T) {
	t.Parallel()

	hints := []string{"main-menu", "v3"}
	testCases := []struct {
		url  string
		want bool
	}{
		{"https://static-basket-01.wbbasket.ru/vol0/data/main-menu-ru-ru-v3.json", true},
		{"https://static-basket-01.wbbasket.ru/vol0/data/main-menu-ru-ru-v2.json", false},
		{"https://static-basket-01.wbbasket.ru/vol0/data/main-menu-ru-ru-v3.json?x=1", false},
		{"https://example.com/v3/other.json", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, IsMenuURL(tc.url, hints), tc.url)
	}
}

func TestIsMenuResourceType(t *testing.T) {
	t.Parallel()

	assert.True(t, IsMenuResourceType("xhr"))
	assert.True(t, IsMenuResourceType("Fetch"))
	assert.False(t, IsMenuResourceType("script"))
	assert.False(t, IsMenuResourceType(""))
}

func TestLooksLikeMenu(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		raw  string
		want bool
	}{
		{"menu", `[{"id": 1, "name": "Женщинам"}]`, true},
		{"match in fifth element", `[1, 2, "x", {}, {"id": 1, "name": "a"}]`, true},
		{"match beyond probe", `[1, 2, 3, 4, 5, {"id": 1, "name": "a"}]`, false},
		{"missing name", `[{"id": 1}]`, false},
		{"object not array", `{"id": 1, "name": "a"}`, false},
		{"empty array", `[]`, false},
		{"not json", `<html></html>`, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LooksLikeMenu([]byte(tc.raw)))
		})
	}
}

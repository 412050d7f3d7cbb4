package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wildberries/catalog/internal/domain"
)

// SubjectFacetKey is the filter key holding the subject facet
const SubjectFacetKey = "xsubject"

var utf8BOM = []byte("\ufeff")

type searchResponse struct {
	Data *searchData `json:"data"`
}

type searchData struct {
	Filters []searchFilter `json:"filters"`
}

type searchFilter struct {
	Key   string       `json:"key"`
	Name  string       `json:"name"`
	Items []facetValue `json:"items"`
}

type facetValue struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DecodeSearchResponse parses body as JSON. Bodies not declared as JSON
// (the endpoint often answers text/plain) are read as text: a leading BOM and
// surrounding whitespace are stripped before parsing.
func DecodeSearchResponse(contentType string, body []byte) (*searchResponse, error) {
	var payload searchResponse

	if isJSONContentType(contentType) {
		if err := json.Unmarshal(body, &payload); err == nil {
			return &payload, nil
		}
	}

	text := bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(body), utf8BOM))
	if len(text) > 0 && text[0] == '<' {
		return nil, htmlError(text)
	}

	if err := json.Unmarshal(text, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return &payload, nil
}

// ExtractSubjects returns the xsubject facet items in response order.
// A response without data.filters is an error; a missing facet is not.
func ExtractSubjects(payload *searchResponse) ([]domain.Subject, error) {
	if payload == nil || payload.Data == nil || payload.Data.Filters == nil {
		return nil, errors.New("search response has no data.filters")
	}

	for _, f := range payload.Data.Filters {
		if f.Key != SubjectFacetKey {
			continue
		}

		subjects := make([]domain.Subject, 0, len(f.Items))
		for _, it := range f.Items {
			subjects = append(subjects, domain.Subject{ID: it.ID, Name: it.Name})
		}
		return subjects, nil
	}

	return []domain.Subject{}, nil
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// htmlError describes an HTML page (usually an anti-bot challenge) returned instead of JSON
func htmlError(body []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return errors.New("search returned HTML instead of JSON")
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		return errors.New("search returned HTML instead of JSON")
	}
	return fmt.Errorf("search returned HTML page %q instead of JSON", title)
}

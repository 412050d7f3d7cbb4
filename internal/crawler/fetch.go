package crawler

import (
	"context"
	"fmt"

	"wildberries/catalog/internal/client"
	"wildberries/catalog/internal/domain"
)

// FetchLeafRecord fetches the subjects of one leaf and always returns a
// record: any failure, panics included, ends up in record.Error.
func FetchLeafRecord(ctx context.Context, searchClient client.SearchClient, leaf domain.LeafDescriptor) (record domain.LeafRecord) {
	record = domain.NewLeafRecord(leaf)

	defer func() {
		if r := recover(); r != nil {
			record.Fail(fmt.Errorf("panic while fetching leaf %d: %v", leaf.LeafID, r))
		}
	}()

	subjects, err := searchClient.GetLeafSubjects(ctx, leaf)
	if err != nil {
		record.Fail(err)
		return record
	}

	if subjects != nil {
		record.Subjects = subjects
	}
	return record
}

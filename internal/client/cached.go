package client

import (
	"context"

	log "github.com/sirupsen/logrus"

	"wildberries/catalog/internal/domain"
)

// SubjectCache stores subjects of leaves that were fetched successfully
type SubjectCache interface {
	Get(ctx context.Context, leafID int64) ([]domain.Subject, bool, error)
	Set(ctx context.Context, leafID int64, subjects []domain.Subject) error
}

// CachedClient answers from cache before going to the network
type CachedClient struct {
	next  SearchClient
	cache SubjectCache
}

func NewCachedClient(next SearchClient, cache SubjectCache) *CachedClient {
	return &CachedClient{next: next, cache: cache}
}

func (c *CachedClient) GetLeafSubjects(ctx context.Context, leaf domain.LeafDescriptor) ([]domain.Subject, error) {
	subjects, ok, err := c.cache.Get(ctx, leaf.LeafID)
	if err != nil {
		log.Warnf("⚠️ Subject cache read failed for leaf %d: %v", leaf.LeafID, err)
	} else if ok {
		return subjects, nil
	}

	subjects, err = c.next.GetLeafSubjects(ctx, leaf)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, leaf.LeafID, subjects); err != nil {
		log.Warnf("⚠️ Subject cache write failed for leaf %d: %v", leaf.LeafID, err)
	}
	return subjects, nil
}

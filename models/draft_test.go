package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDraftID(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	assert.Equal(t, "invoice-1700000000000", NewDraftID("invoice", now))
}

func TestCacheEntry_Fresh(t *testing.T) {
	stored := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := CacheEntry{
		Key:       "remote:orders",
		StoredAt:  stored,
		ExpiresAt: stored.Add(5 * time.Minute),
	}

	assert.True(t, entry.Fresh(stored.Add(4*time.Minute)))
	assert.False(t, entry.Fresh(stored.Add(5*time.Minute)))
	assert.False(t, entry.Fresh(stored.Add(time.Hour)))
}

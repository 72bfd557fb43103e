package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockObjectWriter struct {
	mock.Mock
}

func (m *MockObjectWriter) PutObject(ctx context.Context, key, contentType string, body []byte, metadata map[string]string) error {
	args := m.Called(ctx, key, contentType, body, metadata)
	return args.Error(0)
}

func TestPageKey(t *testing.T) {
	at := time.Date(2026, 2, 7, 23, 30, 0, 0, time.UTC)

	key := PageKey("https://www.sephora.com/product/example", at)

	assert.Regexp(t, `^pages/2026/02/07/[0-9a-f]{64}\.html$`, key)
	assert.Equal(t, key, PageKey("https://www.sephora.com/product/example", at))
	assert.NotEqual(t, key, PageKey("https://www.ulta.com/product/example", at))
}

func TestPageArchive_Archive(t *testing.T) {
	store := new(MockObjectWriter)
	archive := NewPageArchive(store)
	at := time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)
	archive.now = func() time.Time { return at }

	ctx := context.Background()
	body := []byte("<html></html>")
	meta := map[string]string{SourceURLMetadataKey: "https://example.com/p"}
	store.On("PutObject", ctx, PageKey("https://example.com/p", at), htmlContentType, body, meta).Return(nil)

	require.NoError(t, archive.Archive(ctx, "https://example.com/p", body))
	store.AssertExpectations(t)
}

func TestPageArchive_ArchiveError(t *testing.T) {
	store := new(MockObjectWriter)
	archive := NewPageArchive(store)
	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))

	err := archive.Archive(context.Background(), "https://example.com/p", []byte("x"))

	assert.ErrorContains(t, err, "access denied")
	assert.ErrorContains(t, err, "https://example.com/p")
}

package repository

import (
	"context"
	"net/url"
	"strings"

	"github.com/cessadesk/cessadesk/internal/db"
)

const DefaultBucket = "cessation_documents"

// BlobStore keeps uploaded documents in an OxiDB bucket. OxiDB objects are
// not publicly addressable, so URL points at the file proxy route served
// by this process.
type BlobStore struct {
	pool    *db.Pool
	bucket  string
	baseURL string
}

// NewBlobStore returns a store whose URLs are <baseURL>/files/<path>.
func NewBlobStore(pool *db.Pool, bucket, baseURL string) *BlobStore {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &BlobStore{pool: pool, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *BlobStore) EnsureBucket(ctx context.Context) error {
	return s.pool.Get().CreateBucket(ctx, s.bucket)
}

func (s *BlobStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	return s.pool.Get().PutObject(ctx, s.bucket, path, data, contentType)
}

func (s *BlobStore) URL(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/files/" + strings.Join(segments, "/")
}

func (s *BlobStore) Get(ctx context.Context, path string) ([]byte, string, error) {
	data, meta, err := s.pool.Get().GetObject(ctx, s.bucket, path)
	if err != nil {
		return nil, "", storeErr(err)
	}
	contentType, _ := meta["content_type"].(string)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

func (s *BlobStore) Delete(ctx context.Context, path string) error {
	return s.pool.Get().DeleteObject(ctx, s.bucket, path)
}

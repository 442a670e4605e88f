// File: sink/blob.go
// Author: momentics <momentics@gmail.com>

package sink

import (
	"context"

	"gocloud.dev/blob"

	"github.com/momentics/hioload-dl/api"
)

// NewBlobSinkFactory returns a factory writing each transfer to an object
// in bucket, keyed by prefix plus the sanitized suggested name. The object
// is committed when the downloader closes the sink; a failed commit fails
// the transfer.
func NewBlobSinkFactory(ctx context.Context, bucket *blob.Bucket, prefix string) api.SinkFactory {
	return func(_ api.Handle, address, suggested string) (api.Sink, error) {
		key := prefix + sanitizeName(suggested)
		w, err := bucket.NewWriter(ctx, key, nil)
		if err != nil {
			return nil, err
		}
		return &blobSink{w: w, key: key}, nil
	}
}

type blobSink struct {
	w   *blob.Writer
	key string
}

func (s *blobSink) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s *blobSink) Close() error                { return s.w.Close() }
func (s *blobSink) Name() string                { return s.key }

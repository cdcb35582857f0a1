package binarize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ByteSource produces the payload of a Blob from its handle. Read may be
// called concurrently for different handles.
type ByteSource interface {
	Read(ctx context.Context, handle any) (data []byte, mimeType string, err error)
}

// ByteSourceFunc adapts a function to the ByteSource interface
type ByteSourceFunc func(ctx context.Context, handle any) ([]byte, string, error)

func (f ByteSourceFunc) Read(ctx context.Context, handle any) ([]byte, string, error) {
	return f(ctx, handle)
}

// MemorySource serves blobs from memory, keyed by string handle
type MemorySource map[string]Blob

func (s MemorySource) Read(_ context.Context, handle any) ([]byte, string, error) {
	key, ok := handle.(string)
	if !ok {
		return nil, "", fmt.Errorf("memory source handle must be a string, not %T", handle)
	}
	b, ok := s[key]
	if !ok {
		return nil, "", fmt.Errorf("no blob named '%s'", key)
	}
	return b.Data, b.MimeType, nil
}

// FileSource reads blobs from files below Root. Handles are slash-separated
// paths relative to Root. The MIME type is sniffed from the file contents.
type FileSource struct {
	Root string
}

func (s FileSource) Read(ctx context.Context, handle any) ([]byte, string, error) {
	name, ok := handle.(string)
	if !ok {
		return nil, "", fmt.Errorf("file source handle must be a string, not %T", handle)
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	// Handles may not climb out of Root
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return nil, "", fmt.Errorf("file source handle '%s' is not a path below the root", name)
	}

	data, err := os.ReadFile(filepath.Join(s.Root, rel))
	if err != nil {
		return nil, "", err
	}
	return data, mimetype.Detect(data).String(), nil
}

// BlobReadError reports which blob a ByteSource failed on. It matches both
// ErrBlobRead and the underlying source error.
type BlobReadError struct {
	Index  int
	Handle any
	Err    error
}

func (e *BlobReadError) Error() string {
	return fmt.Sprintf("%s: blob %d (%v): %s", ErrBlobRead, e.Index, e.Handle, e.Err)
}

func (e *BlobReadError) Unwrap() []error {
	return []error{ErrBlobRead, e.Err}
}

// resolvedBlob is the payload fetched for one handle-backed Blob
type resolvedBlob struct {
	data     []byte
	mimeType string
}

// collectHandles walks v in pre-order and returns the handle of every Blob
// that has one. A handle's position in the result is its traversal index.
func collectHandles(v Value, depth int, handles []any) ([]any, error) {
	if depth > maxDepth {
		return nil, errors.Wrapf(ErrUnsupportedType, "value nested deeper than %d levels", maxDepth)
	}

	var err error
	switch tv := v.(type) {
	case Blob:
		if tv.Handle != nil {
			handles = append(handles, tv.Handle)
		}
	case Sequence:
		for _, child := range tv {
			if handles, err = collectHandles(child, depth+1, handles); err != nil {
				return nil, err
			}
		}
	case *Mapping:
		for _, e := range tv.Entries() {
			if handles, err = collectHandles(e.Value, depth+1, handles); err != nil {
				return nil, err
			}
		}
	}
	return handles, nil
}

// blobResult is what one read goroutine reports back
type blobResult struct {
	index int
	blob  resolvedBlob
	err   error
}

// resolveBlobs fetches every handle-backed Blob in v. All reads are started
// together and the results are placed by traversal index, so completion
// order never affects the output. The first failure returns immediately;
// reads still in flight are not cancelled and their results are dropped.
func resolveBlobs(ctx context.Context, src ByteSource, v Value, log *zap.SugaredLogger) ([]resolvedBlob, error) {
	handles, err := collectHandles(v, 0, nil)
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, nil
	}
	if src == nil {
		return nil, errors.Wrapf(ErrBlobRead, "%d blob handles but no byte source configured", len(handles))
	}

	log.Debugw("resolving blobs", "count", len(handles))

	// Buffered so abandoned reads never block on send
	done := make(chan blobResult, len(handles))
	for i, h := range handles {
		i, h := i, h
		go func() {
			data, mimeType, err := src.Read(ctx, h)
			if err != nil {
				done <- blobResult{index: i, err: &BlobReadError{Index: i, Handle: h, Err: err}}
				return
			}
			done <- blobResult{index: i, blob: resolvedBlob{data: data, mimeType: mimeType}}
		}()
	}

	results := make([]resolvedBlob, len(handles))
	for range handles {
		r := <-done
		if r.err != nil {
			log.Debugw("blob resolution failed", "error", r.err)
			return nil, r.err
		}
		results[r.index] = r.blob
	}
	return results, nil
}

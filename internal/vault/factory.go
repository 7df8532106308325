package vault

import (
	"context"
	"fmt"
	"io"
	"sync"

	"fic-go/internal/config"
	"fic-go/internal/fic"
)

// Router is an ArchiveStore that dispatches on the destination
// reference: "s3://bucket/key" goes to S3, anything else is a local
// path. The S3 client is only constructed the first time an s3
// reference is used, so purely local setups never touch AWS config.
type Router struct {
	exportCfg config.ExportConfig
	fs        *FileSystemStore

	mu sync.Mutex
	s3 fic.ArchiveStore
}

// NewRouter creates an archive store routing between local and S3 destinations.
func NewRouter(exportCfg config.ExportConfig) *Router {
	return &Router{
		exportCfg: exportCfg,
		fs:        NewFileSystemStore(),
	}
}

func (r *Router) Put(ref string, src io.Reader) error {
	store, err := r.storeFor(ref)
	if err != nil {
		return err
	}
	return store.Put(ref, src)
}

func (r *Router) Get(ref string, w io.Writer) error {
	store, err := r.storeFor(ref)
	if err != nil {
		return err
	}
	return store.Get(ref, w)
}

func (r *Router) storeFor(ref string) (fic.ArchiveStore, error) {
	if !IsS3Ref(ref) {
		return r.fs, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.s3 == nil {
		s3store, err := NewS3Store(context.Background(), r.exportCfg)
		if err != nil {
			return nil, fmt.Errorf("initializing s3 store: %w", err)
		}
		r.s3 = s3store
	}
	return r.s3, nil
}

// Compile-time check that Router implements fic.ArchiveStore.
var _ fic.ArchiveStore = (*Router)(nil)

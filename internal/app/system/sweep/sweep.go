// Package sweep reclaims orphaned blobs from attachment storage.
//
// A blob is an orphan when no attachment record references its storage name.
// Orphans appear when a blob write succeeds and the record insert that follows
// fails, and the cleanup of that blob fails too. Blobs younger than the grace
// period are never touched so an upload still between its two writes survives.
//
// The sweep works through waffle's storage.Store listing, so the local and S3
// backends are handled the same way.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/stratafolders/internal/app/system/blobs"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// DefaultGrace is used when Options.Grace is zero.
const DefaultGrace = time.Hour

// DefaultPageSize is the listing page requested when Options.PageSize is
// zero. S3 caps each page at 1000 server-side and pages with continuation
// tokens; the local backend returns up to this many objects in one call.
const DefaultPageSize = 10000

// Referencer reports whether an attachment record points at a storage name.
// file.Store satisfies it.
type Referencer interface {
	HasPath(ctx context.Context, path string) (bool, error)
}

// Lister is the subset of storage.Store the sweep needs.
type Lister interface {
	List(ctx context.Context, prefix string, opts *storage.ListOptions) (*storage.ListResult, error)
	Delete(ctx context.Context, path string) error
}

// Options controls a single sweep.
type Options struct {
	Prefix   string        // only objects under this prefix; empty means all
	Grace    time.Duration // minimum age before a blob may be reclaimed
	DryRun   bool          // report orphans without removing them
	PageSize int           // listing page size
}

// Report summarizes a sweep.
type Report struct {
	Scanned    int      // objects seen
	Referenced int      // objects with an attachment record
	Young      int      // objects inside the grace period
	Orphans    []string // storage names without a record
	Removed    int      // orphans actually deleted
	Failed     int      // orphans that could not be deleted
	Bytes      int64    // size of the removed orphans
	Truncated  bool     // the listing stopped before the end of the store
}

// Sweeper lists a store and removes unreferenced blobs.
type Sweeper struct {
	refs Referencer
	log  *zap.Logger
	now  func() time.Time
}

// New returns a Sweeper that checks references against refs.
func New(refs Referencer, logger *zap.Logger) *Sweeper {
	return &Sweeper{refs: refs, log: logger, now: time.Now}
}

// Run sweeps store once. The whole listing is collected before anything is
// removed so deletions cannot shift the pages. Reference lookups that fail
// abort the sweep; a blob that cannot be removed is counted and skipped.
func (s *Sweeper) Run(ctx context.Context, store Lister, opts Options) (Report, error) {
	var rep Report
	grace := opts.Grace
	if grace == 0 {
		grace = DefaultGrace
	}
	cutoff := s.now().Add(-grace)

	objects, truncated, err := s.list(ctx, store, opts)
	if err != nil {
		return rep, err
	}
	rep.Truncated = truncated

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Scanned++

		// No timestamp means the age is unknown; leave it alone.
		if obj.LastModified.IsZero() || obj.LastModified.After(cutoff) {
			rep.Young++
			continue
		}

		used, err := s.refs.HasPath(ctx, obj.Path)
		if err != nil {
			return rep, fmt.Errorf("sweep: lookup %q: %w", obj.Path, err)
		}
		if used {
			rep.Referenced++
			continue
		}

		rep.Orphans = append(rep.Orphans, obj.Path)
		if opts.DryRun {
			continue
		}
		if err := store.Delete(ctx, obj.Path); err != nil && !blobs.IsNotFound(err) {
			rep.Failed++
			s.log.Warn("failed to remove orphaned blob",
				zap.String("path", obj.Path),
				zap.Error(err))
			continue
		}
		rep.Removed++
		rep.Bytes += obj.Size
		s.log.Info("removed orphaned blob",
			zap.String("path", obj.Path),
			zap.Int64("size", obj.Size))
	}

	s.log.Info("blob sweep finished",
		zap.String("prefix", opts.Prefix),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("truncated", rep.Truncated),
		zap.Int("scanned", rep.Scanned),
		zap.Int("referenced", rep.Referenced),
		zap.Int("young", rep.Young),
		zap.Int("orphans", len(rep.Orphans)),
		zap.Int("removed", rep.Removed),
		zap.Int("failed", rep.Failed))
	return rep, nil
}

// list pages through the store. Backends that ignore continuation tokens hand
// back the same page again; a page with nothing new or a repeated token ends
// the listing as truncated instead of looping.
func (s *Sweeper) list(ctx context.Context, store Lister, opts Options) ([]storage.ObjectInfo, bool, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var (
		out   []storage.ObjectInfo
		seen  = map[string]bool{}
		token string
	)
	for {
		res, err := store.List(ctx, opts.Prefix, &storage.ListOptions{
			MaxKeys:           pageSize,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, false, fmt.Errorf("sweep: list %q: %w", opts.Prefix, err)
		}

		fresh := 0
		for _, obj := range res.Objects {
			if seen[obj.Path] {
				continue
			}
			seen[obj.Path] = true
			fresh++
			out = append(out, obj)
		}

		if !res.IsTruncated || res.NextContinuationToken == "" {
			return out, false, nil
		}
		if fresh == 0 || res.NextContinuationToken == token {
			s.log.Warn("storage listing did not advance; sweep covers a partial listing",
				zap.String("prefix", opts.Prefix),
				zap.Int("page_size", pageSize),
				zap.Int("listed", len(out)))
			return out, true, nil
		}
		token = res.NextContinuationToken
	}
}

// Package store implements the dual-tier asset store: a local
// filesystem tier that always serves reads and writes, plus an
// optional remote object-storage mirror. Remote failures degrade to
// warnings; the local tier is never blocked by the remote one.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"deckvault/internal/application"
	"deckvault/internal/domain"
	"deckvault/internal/ports"
)

// Store manages the assets of a single project. Operations on the
// same asset key are serialized; distinct keys proceed concurrently.
type Store struct {
	projectID string
	dir       string              // <root>/<project>
	prefix    string              // remote key namespace prefix
	remote    ports.ObjectStorage // nil when sync is disabled
	ledger    ports.SyncLedger
	keys      *keyLocks
}

// Factory builds per-project stores from shared configuration. The
// key-lock registry lives here, not in the stores it hands out, so
// operations on the same asset key serialize no matter how many times
// a store for the project has been derived.
type Factory struct {
	Root   string
	Prefix string
	Remote ports.ObjectStorage
	Ledger ports.SyncLedger

	keys keyLocks
}

// For returns the store for a project. The remote tier is attached
// only when the project has sync enabled and a remote is configured.
func (f *Factory) For(p *domain.Project) *Store {
	var remote ports.ObjectStorage
	if p.SyncEnabled {
		remote = f.Remote
	}
	return &Store{
		projectID: p.ID,
		dir:       filepath.Join(f.Root, p.ID),
		prefix:    f.Prefix,
		remote:    remote,
		ledger:    f.Ledger,
		keys:      &f.keys,
	}
}

// WriteResult reports the outcome of a write. Warning is non-empty
// when the remote leg failed: the asset is saved locally but not yet
// synced.
type WriteResult struct {
	Key     string
	SHA256  string
	Synced  bool
	Warning string
}

// DeleteResult reports which tiers a delete reached.
type DeleteResult struct {
	Key           string
	LocalRemoved  bool
	RemoteRemoved bool
	Warning       string
}

// Listing is the merged view of both tiers for one asset kind.
type Listing struct {
	Keys    []string // sorted union
	Local   map[string]bool
	Remote  map[string]bool
	Warning string
}

// ProjectID returns the owning project's ID.
func (s *Store) ProjectID() string {
	return s.projectID
}

// SyncEnabled reports whether a remote tier is attached.
func (s *Store) SyncEnabled() bool {
	return s.remote != nil
}

func (s *Store) localPath(kind domain.AssetKind, key string) string {
	return filepath.Join(s.dir, string(kind), filepath.FromSlash(key))
}

func (s *Store) lockKey(kind domain.AssetKind, key string) string {
	return s.projectID + "/" + string(kind) + "/" + key
}

func (s *Store) objectKey(kind domain.AssetKind, key string) string {
	return path.Join(s.prefix, s.projectID, string(kind), key)
}

func (s *Store) objectPrefix(kind domain.AssetKind) string {
	return path.Join(s.prefix, s.projectID, string(kind)) + "/"
}

// Read returns asset bytes, local tier first. The remote tier is
// consulted only on a local miss, and a remote hit populates the
// local cache before returning.
func (s *Store) Read(ctx context.Context, kind domain.AssetKind, key string) ([]byte, error) {
	unlock := s.keys.lock(s.lockKey(kind, key))
	defer unlock()

	data, err := os.ReadFile(s.localPath(kind, key))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s/%s: %w", kind, key, err)
	}

	if s.remote == nil {
		return nil, fmt.Errorf("read %s/%s: %w", kind, key, application.ErrNotFound)
	}

	data, err = s.remote.Get(ctx, s.objectKey(kind, key))
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return nil, fmt.Errorf("read %s/%s: %w", kind, key, application.ErrNotFound)
		}
		return nil, &application.SyncError{Op: "get", Key: key, Err: err}
	}

	if err := writeFileAtomic(s.localPath(kind, key), data); err != nil {
		return nil, fmt.Errorf("cache %s/%s: %w", kind, key, err)
	}
	s.recordState(kind, key, data, true, true, false)
	return data, nil
}

// Write stores asset bytes locally and mirrors them remotely when
// sync is enabled. The local write always wins: a remote failure
// leaves the ledger record pending and comes back as a warning.
func (s *Store) Write(ctx context.Context, kind domain.AssetKind, key string, data []byte) (*WriteResult, error) {
	unlock := s.keys.lock(s.lockKey(kind, key))
	defer unlock()

	if err := writeFileAtomic(s.localPath(kind, key), data); err != nil {
		return nil, fmt.Errorf("write %s/%s: %w", kind, key, err)
	}

	sum := hashBytes(data)
	result := &WriteResult{Key: key, SHA256: sum}

	if s.remote == nil {
		s.recordState(kind, key, data, true, false, false)
		return result, nil
	}

	// Pending is set before the remote leg so an interruption in
	// between is detectable at the next reconcile.
	s.recordState(kind, key, data, true, false, true)

	if err := s.remote.Put(ctx, s.objectKey(kind, key), data); err != nil {
		result.Warning = (&application.SyncError{Op: "put", Key: key, Err: err}).Error()
		return result, nil
	}

	s.recordState(kind, key, data, true, true, false)
	result.Synced = true
	return result, nil
}

// Delete removes an asset from both tiers. Idempotent: deleting an
// absent asset is a no-op, not an error.
func (s *Store) Delete(ctx context.Context, kind domain.AssetKind, key string) (*DeleteResult, error) {
	unlock := s.keys.lock(s.lockKey(kind, key))
	defer unlock()

	result := &DeleteResult{Key: key}

	err := os.Remove(s.localPath(kind, key))
	switch {
	case err == nil:
		result.LocalRemoved = true
	case errors.Is(err, fs.ErrNotExist):
		// already absent
	default:
		return nil, fmt.Errorf("delete %s/%s: %w", kind, key, err)
	}

	if s.remote == nil {
		s.ledger.Delete(s.projectID, kind, key)
		return result, nil
	}

	s.recordState(kind, key, nil, false, true, true)

	if err := s.remote.Delete(ctx, s.objectKey(kind, key)); err != nil && !errors.Is(err, application.ErrNotFound) {
		result.Warning = (&application.SyncError{Op: "delete", Key: key, Err: err}).Error()
		return result, nil
	}
	result.RemoteRemoved = true

	s.ledger.Delete(s.projectID, kind, key)
	return result, nil
}

// List merges the local directory walk with the remote prefix
// listing. Remote unavailability degrades to a local-only listing
// with a warning.
func (s *Store) List(ctx context.Context, kind domain.AssetKind) (*Listing, error) {
	listing := &Listing{
		Local:  make(map[string]bool),
		Remote: make(map[string]bool),
	}

	localKeys, err := s.listLocal(kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	for _, key := range localKeys {
		listing.Local[key] = true
	}

	if s.remote != nil {
		remoteKeys, err := s.remote.List(ctx, s.objectPrefix(kind))
		if err != nil {
			listing.Warning = (&application.SyncError{Op: "list", Key: string(kind), Err: err}).Error()
		} else {
			for _, key := range remoteKeys {
				listing.Remote[key] = true
			}
		}
	}

	seen := make(map[string]bool)
	for key := range listing.Local {
		seen[key] = true
	}
	for key := range listing.Remote {
		seen[key] = true
	}
	listing.Keys = make([]string, 0, len(seen))
	for key := range seen {
		listing.Keys = append(listing.Keys, key)
	}
	sort.Strings(listing.Keys)
	return listing, nil
}

func (s *Store) listLocal(kind domain.AssetKind) ([]string, error) {
	root := filepath.Join(s.dir, string(kind))
	var keys []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		// Dot files are never assets; an in-flight atomic write leaves
		// a temp file here until its rename.
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// recordState upserts the ledger entry for an asset. Ledger failures
// are deliberately swallowed: the ledger is a consistency aid, not a
// gate on the data path.
func (s *Store) recordState(kind domain.AssetKind, key string, data []byte, local, remote, pending bool) {
	rec := &domain.SyncRecord{
		ProjectID:     s.projectID,
		Kind:          kind,
		Key:           key,
		LocalPresent:  local,
		RemotePresent: remote,
		Pending:       pending,
		UpdatedAt:     time.Now().Unix(),
	}
	if data != nil {
		rec.SHA256 = hashBytes(data)
	}
	s.ledger.Upsert(rec)
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeFileAtomic writes via a temp file and rename so a cancelled
// operation leaves either the old or the new content, never a torn
// file.
func writeFileAtomic(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".deckvault-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

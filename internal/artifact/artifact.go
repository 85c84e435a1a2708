// Package artifact implements the two artifact variants (File, Directory)
// and the per-artifact Manager mark-state machine (SPEC_FULL.md §4.3).
// Grounded on original_source/src/hash-cache_impl.cc's ArtifactFile/
// ArtifactDir, extended with the richer Aggregate/Post/Simple manager model
// spec.md deliberately redesigns beyond the original's flat touched-step set.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pjsaksa/swd/internal/hashcache"
)

// LinkType classifies how a Step contributes to an Artifact.
type LinkType int

const (
	// LinkSimple is an ordinary output; no mark is persisted.
	LinkSimple LinkType = iota
	// LinkAggregate marks a step as one of several co-authoring an artifact.
	LinkAggregate
	// LinkPost marks a step as a post-processing consumer of an artifact.
	LinkPost
)

// String renders the on-disk/JSON form used by artifacts.json
// (SPEC_FULL.md §4.7): "aggregate", "post", and "" for LinkSimple ("simple"
// is accepted by ParseLinkType but never produced here).
func (l LinkType) String() string {
	switch l {
	case LinkAggregate:
		return "aggregate"
	case LinkPost:
		return "post"
	default:
		return ""
	}
}

// ParseLinkType parses the on-disk form, treating "" and "simple"
// identically as LinkSimple per SPEC_FULL.md §4.7.
func ParseLinkType(s string) (LinkType, error) {
	switch s {
	case "", "simple":
		return LinkSimple, nil
	case "aggregate":
		return LinkAggregate, nil
	case "post":
		return LinkPost, nil
	default:
		return LinkSimple, fmt.Errorf("%w: %q", ErrMalformedMark, s)
	}
}

// ErrMalformedMark is wrapped by ParseLinkType on an unrecognized string.
var ErrMalformedMark = errors.New("malformed artifact save data")

// Hasher computes a content hash from a byte stream; it is the HashReader
// half of execshell.Hasher, which satisfies it. Declared locally so this
// package doesn't need to import execshell just for one method.
type Hasher interface {
	HashReader(ctx context.Context, r io.Reader) (string, error)
}

// Artifact is a named, scoped, content-hashable output, owning a Manager of
// per-step marks.
type Artifact interface {
	Name() string
	Scope() string
	CalculateHash(ctx context.Context) (string, error)
	StoreHash(h string)
	GetHash() string
	Compare(candidate string, allowMissing bool) bool
	Manager() *Manager
}

type base struct {
	hashcache.Cache
	name    string
	scope   string
	manager Manager
}

func (b *base) Name() string                                   { return b.name }
func (b *base) Scope() string                                  { return b.scope }
func (b *base) Manager() *Manager                               { return &b.manager }
func (b *base) Compare(candidate string, allowMissing bool) bool { return b.Cache.Compare(candidate, allowMissing) }

// File is a plain file artifact. Its hash is the sentinel if the file is
// unreadable, else the hash of its bytes.
type File struct {
	base
	path string
	hash Hasher
}

func NewFile(name, scope, path string, hash Hasher) *File {
	f := &File{path: path, hash: hash}
	f.name, f.scope = name, scope
	return f
}

func (a *File) CalculateHash(ctx context.Context) (string, error) {
	f, err := os.Open(a.path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, fs.ErrPermission) {
			return hashcache.Sentinel, nil
		}
		return "", fmt.Errorf("opening artifact file %s: %w", a.path, err)
	}
	defer f.Close()

	return a.hash.HashReader(ctx, f)
}

// Directory is a directory artifact. Its hash is computed from a sorted,
// deterministic listing of "size\tmtime\tpath" lines for every regular file
// under path, pruning anything matching an exclude glob pattern
// (filepath.Match syntax). SPEC_FULL.md §9 resolves the original's
// find-ordering open question by sorting explicitly rather than relying on
// traversal order.
type Directory struct {
	base
	path    string
	exclude []string
	hash    Hasher
}

func NewDirectory(name, scope, path string, exclude []string, hash Hasher) *Directory {
	d := &Directory{path: path, exclude: exclude, hash: hash}
	d.name, d.scope = name, scope
	return d
}

func (a *Directory) CalculateHash(ctx context.Context) (string, error) {
	if _, err := os.Stat(a.path); err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return hashcache.Sentinel, nil
		}
		return "", fmt.Errorf("stat %s: %w", a.path, err)
	}

	type entry struct {
		size  int64
		mtime int64
		path  string
	}

	var entries []entry

	err := filepath.WalkDir(a.path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return nil
			}
			return err
		}

		if d.IsDir() {
			if p != a.path && a.pruned(p) {
				return filepath.SkipDir
			}
			return nil
		}

		if a.pruned(p) || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		entries = append(entries, entry{size: info.Size(), mtime: info.ModTime().Unix(), path: p})
		return nil
	})

	if err != nil {
		if os.IsPermission(err) {
			return hashcache.Sentinel, nil
		}
		return "", fmt.Errorf("walking %s: %w", a.path, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%d\t%d\t%s\n", e.size, e.mtime, e.path)
	}

	return a.hash.HashReader(ctx, &buf)
}

func (a *Directory) pruned(p string) bool {
	for _, pattern := range a.exclude {
		if ok, _ := filepath.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

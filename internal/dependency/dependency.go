// Package dependency implements the three input kinds a Step can declare
// (SPEC_FULL.md §4.2): a reference to an Artifact's own hash, literal inline
// data, and a file on disk. Grounded on
// original_source/src/hash-cache_impl.cc's DependencyArtifact/Data/File.
package dependency

import (
	"context"
	"fmt"
	"os"

	"github.com/pjsaksa/swd/internal/execshell"
	"github.com/pjsaksa/swd/internal/hashcache"
)

// Kind identifies a dependency's variant for serialization and info-probe
// JSON (SPEC_FULL.md §6).
type Kind string

const (
	KindArtifact Kind = "artifact"
	KindData     Kind = "data"
	KindFile     Kind = "file"
)

// ArtifactResolver looks up an artifact's current and stored hash by name.
// Implemented by *master.Master; kept as a narrow interface here to avoid an
// import cycle between internal/dependency and internal/master.
type ArtifactResolver interface {
	// ArtifactCalculateHash returns the current, freshly computed hash of
	// the named artifact.
	ArtifactCalculateHash(ctx context.Context, name string) (string, error)
	// ArtifactCompare reports whether candidate matches the named
	// artifact's stored hash, per hashcache.Cache.Compare's rule.
	ArtifactCompare(name string, candidate string, allowMissing bool) bool
}

// Dependency is a single declared input of a Step.
type Dependency interface {
	ID() string
	Kind() Kind

	// CalculateHash computes the dependency's current content hash,
	// without consulting or mutating the stored hash.
	CalculateHash(ctx context.Context) (string, error)

	// IsUpToDate reports whether the dependency's current hash matches
	// its stored hash.
	IsUpToDate(ctx context.Context) (bool, error)

	StoreHash(h string)
	GetHash() string
}

// ArtifactRef depends on another artifact's own content. Its IsUpToDate
// check compares against the ARTIFACT's stored hash, not the dependency's
// own — SPEC_FULL.md §4.2 is explicit about this distinction.
type ArtifactRef struct {
	hashcache.Cache
	id       string
	resolver ArtifactResolver
}

func NewArtifactRef(id string, resolver ArtifactResolver) *ArtifactRef {
	return &ArtifactRef{id: id, resolver: resolver}
}

func (d *ArtifactRef) ID() string   { return d.id }
func (d *ArtifactRef) Kind() Kind   { return KindArtifact }
func (d *ArtifactRef) GetHash() string { return d.Cache.GetHash() }

func (d *ArtifactRef) CalculateHash(ctx context.Context) (string, error) {
	return d.resolver.ArtifactCalculateHash(ctx, d.id)
}

func (d *ArtifactRef) IsUpToDate(ctx context.Context) (bool, error) {
	current, err := d.CalculateHash(ctx)
	if err != nil {
		return false, err
	}
	return d.resolver.ArtifactCompare(d.id, current, false), nil
}

// InlineData depends on a literal byte string declared in the step
// definition itself (e.g. a config value baked into a .swd file's
// swd_info output).
type InlineData struct {
	hashcache.Cache
	id     string
	data   []byte
	hasher execshell.Hasher
}

func NewInlineData(id string, data []byte, hasher execshell.Hasher) *InlineData {
	return &InlineData{id: id, data: data, hasher: hasher}
}

func (d *InlineData) ID() string   { return d.id }
func (d *InlineData) Kind() Kind   { return KindData }
func (d *InlineData) GetHash() string { return d.Cache.GetHash() }

func (d *InlineData) CalculateHash(ctx context.Context) (string, error) {
	if len(d.data) == 0 {
		return hashcache.Sentinel, nil
	}
	return d.hasher.HashBytes(ctx, d.data)
}

func (d *InlineData) IsUpToDate(ctx context.Context) (bool, error) {
	current, err := d.CalculateHash(ctx)
	if err != nil {
		return false, err
	}
	return d.Cache.Compare(current, false), nil
}

// FileOnDisk depends on the contents of a file relative to the declaring
// script's scope.
type FileOnDisk struct {
	hashcache.Cache
	id     string
	path   string
	hasher execshell.Hasher
}

func NewFileOnDisk(id, path string, hasher execshell.Hasher) *FileOnDisk {
	return &FileOnDisk{id: id, path: path, hasher: hasher}
}

func (d *FileOnDisk) ID() string   { return d.id }
func (d *FileOnDisk) Kind() Kind   { return KindFile }
func (d *FileOnDisk) GetHash() string { return d.Cache.GetHash() }

func (d *FileOnDisk) CalculateHash(ctx context.Context) (string, error) {
	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return hashcache.Sentinel, nil
		}
		return "", fmt.Errorf("opening dependency file %s: %w", d.path, err)
	}
	defer f.Close()

	return d.hasher.HashReader(ctx, f)
}

func (d *FileOnDisk) IsUpToDate(ctx context.Context) (bool, error) {
	current, err := d.CalculateHash(ctx)
	if err != nil {
		return false, err
	}
	return d.Cache.Compare(current, false), nil
}

// Package hashcache implements the stored-hash mixin shared by dependencies and
// artifacts: a single mutable hash value plus the comparison rule that treats
// "never computed" and "target does not exist" as distinct from an ordinary
// mismatch.
package hashcache

// Sentinel is the stored/candidate hash value meaning "the target is not
// present." It is never equal to a real digest.
const Sentinel = "<does-not-exist>"

// Cache is embedded by dependency and artifact implementations. It is not
// safe for concurrent use; the engine is single-threaded by design (see
// SPEC_FULL.md §5).
type Cache struct {
	storedHash string
}

// StoreHash records the given hash as the last known good value.
func (c *Cache) StoreHash(h string) {
	c.storedHash = h
}

// GetHash returns the currently stored hash, which may be empty.
func (c *Cache) GetHash() string {
	return c.storedHash
}

// Compare reports whether candidate matches the stored hash.
//
//   - An empty stored hash (never computed) never compares equal.
//   - A stored Sentinel compares equal to candidate only when allowMissing is
//     set; otherwise "was missing" never silently counts as "is up to date."
//   - Otherwise the two strings are compared directly.
func (c *Cache) Compare(candidate string, allowMissing bool) bool {
	if c.storedHash == "" {
		return false
	}
	if c.storedHash == Sentinel && !allowMissing {
		return false
	}
	return c.storedHash == candidate
}

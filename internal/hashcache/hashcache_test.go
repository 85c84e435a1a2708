package hashcache

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name         string
		stored       string
		candidate    string
		allowMissing bool
		want         bool
	}{
		{"empty stored never matches", "", "abc", false, false},
		{"empty stored never matches even with allowMissing", "", Sentinel, true, false},
		{"sentinel without allowMissing is false", Sentinel, Sentinel, false, false},
		{"sentinel with allowMissing is true", Sentinel, Sentinel, true, true},
		{"ordinary match", "abc", "abc", false, true},
		{"ordinary mismatch", "abc", "def", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cache
			c.StoreHash(tt.stored)

			if got := c.Compare(tt.candidate, tt.allowMissing); got != tt.want {
				t.Errorf("Compare(%q, %v) = %v, want %v", tt.candidate, tt.allowMissing, got, tt.want)
			}
		})
	}
}

func TestStoreAndGetHash(t *testing.T) {
	var c Cache

	if got := c.GetHash(); got != "" {
		t.Fatalf("new Cache.GetHash() = %q, want empty", got)
	}

	c.StoreHash("deadbeef")

	if got := c.GetHash(); got != "deadbeef" {
		t.Fatalf("GetHash() = %q, want %q", got, "deadbeef")
	}
}

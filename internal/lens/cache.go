package lens

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/maypok86/otter"

	"github.com/ubreblanca/vscode-py-sig-lens/internal/config"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/render"
)

// defaultCacheCapacity bounds the number of cached pipeline results.
const defaultCacheCapacity = 256

// resultCache memoizes pipeline output keyed by document content hash plus
// the config fingerprint, so re-running an unchanged document under unchanged
// display options skips the parse entirely. Entries are immutable label
// slices; callers must not mutate what they get back.
type resultCache struct {
	cache otter.Cache[string, []render.Label]
}

func newResultCache(capacity int) (*resultCache, error) {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	c, err := otter.MustBuilder[string, []render.Label](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build result cache: %w", err)
	}
	return &resultCache{cache: c}, nil
}

// key derives the cache key for one (content, config) pair.
func (rc *resultCache) key(source []byte, cfg *config.Config) string {
	h := sha256.Sum256(source)
	return hex.EncodeToString(h[:]) + ":" + cfg.Fingerprint()
}

func (rc *resultCache) get(key string) ([]render.Label, bool) {
	return rc.cache.Get(key)
}

func (rc *resultCache) set(key string, labels []render.Label) {
	rc.cache.Set(key, labels)
}

func (rc *resultCache) close() {
	rc.cache.Close()
}

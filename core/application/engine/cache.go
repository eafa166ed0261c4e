package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

const (
	// Roughly 64 MiB of cached rows.
	resultCacheMaxCost     = 64 << 20
	resultCacheNumCounters = 1_000_000
	resultCacheBufferItems = 64
)

// resultCache holds connector rows for fields declaring a cache ttl
type resultCache struct {
	store *ristretto.Cache[string, []map[string]any]
}

func newResultCache() (*resultCache, error) {
	store, err := ristretto.NewCache(&ristretto.Config[string, []map[string]any]{
		NumCounters: resultCacheNumCounters,
		MaxCost:     resultCacheMaxCost,
		BufferItems: resultCacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}
	return &resultCache{store: store}, nil
}

func (c *resultCache) Get(key string) ([]map[string]any, bool) {
	rows, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	return cloneRows(rows), true
}

func (c *resultCache) Set(key string, rows []map[string]any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if c.store.SetWithTTL(key, cloneRows(rows), estimateRowsCost(rows), ttl) {
		// Sets are buffered; wait so the next request can read the entry.
		c.store.Wait()
	}
}

func (c *resultCache) Close() {
	c.store.Close()
}

// cacheKey identifies a resolution by field path and the final statement,
// which already embeds every argument, parent and header value.
func cacheKey(fieldPath, statement string) string {
	sum := sha256.Sum256([]byte(fieldPath + "\x00" + statement))
	return hex.EncodeToString(sum[:])
}

func cloneRows(rows []map[string]any) []map[string]any {
	if rows == nil {
		return nil
	}
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		if row != nil {
			out[i] = maps.Clone(row)
		}
	}
	return out
}

func estimateRowsCost(rows []map[string]any) int64 {
	var total int64 = 1
	for _, row := range rows {
		total += int64(len(row) * 16)
		for key, value := range row {
			total += int64(len(key)) + estimateValueCost(value)
		}
	}
	return total
}

func estimateValueCost(v any) int64 {
	switch val := v.(type) {
	case nil:
		return 0
	case string:
		return int64(len(val))
	case []byte:
		return int64(len(val))
	case bool:
		return 1
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return 8
	case time.Time:
		return 24
	case map[string]any:
		var size int64
		for key, nested := range val {
			size += int64(len(key)) + estimateValueCost(nested)
		}
		return size
	case []any:
		var size int64
		for _, nested := range val {
			size += estimateValueCost(nested)
		}
		return size
	default:
		return int64(len(fmt.Sprint(val)))
	}
}

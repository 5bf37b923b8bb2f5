package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RenderKeyOpts are the render settings that change the output bytes.
type RenderKeyOpts struct {
	Format string  `json:"format"`
	Layout string  `json:"layout,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// RenderKey returns the cache key for rendering source (typically DOT text)
// with opts. Equal inputs always produce equal keys.
func RenderKey(source []byte, opts RenderKeyOpts) string {
	return hashKey("render:"+opts.Format, Hash(source), opts)
}

package chunker

import (
	"crypto/sha1"
	"fmt"
)

// PointID returns the deterministic point identifier for a chunk: the first
// 16 bytes of SHA-1("path:startLine:endLine"), reformatted as a canonical
// 8-4-4-4-12 UUID string (per spec.md §3's Chunk point definition).
func PointID(path string, startLine, endLine int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%d:%d", path, startLine, endLine)))
	b := sum[:16]
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

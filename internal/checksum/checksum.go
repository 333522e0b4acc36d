// Package checksum provides the fast, process-stable 64-bit content digest
// used for content-addressed chunk ids, file-change detection, and the
// stable hash behind the BM25F sparse vector indices.
//
// xxHash64 has no process-local seed, unlike Go's built-in map hash, so the
// same content hashes identically across processes and restarts.
package checksum

import "github.com/cespare/xxhash/v2"

// Digest returns the 16-character lowercase hex xxHash64 of data.
func Digest(data []byte) string {
	return hexDigest(xxhash.Sum64(data))
}

// DigestString is a convenience wrapper around Digest for string input.
func DigestString(s string) string {
	return hexDigest(xxhash.Sum64String(s))
}

func hexDigest(sum uint64) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[sum&0xF]
		sum >>= 4
	}
	return string(buf)
}

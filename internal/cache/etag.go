package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ETag returns a weak entity tag over body. Rendered views are
// semantically equal when their data is, so weak comparison is enough.
func ETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `W/"` + hex.EncodeToString(sum[:16]) + `"`
}

// MatchesIfNoneMatch reports whether an If-None-Match header value
// matches etag under weak comparison.
func MatchesIfNoneMatch(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}

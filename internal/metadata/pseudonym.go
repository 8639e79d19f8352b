package metadata

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives a short, stable, non-reversible fragment from s.
//
// Sites like X and TikTok have no designated title field, so post text is
// fingerprinted instead: repeated posts by the same uploader stay
// distinguishable without the original caption leaking into the title. Not a
// security boundary; a longer prefix would only lower the collision odds.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:5]
}

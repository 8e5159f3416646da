package feed

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyLink = errors.New("item has no link")

// Firestore caps document ids at 1500 bytes; stay well below it.
const maxEncodedLinkID = 1400

const hashedLinkIDPrefix = "h_"

// LinkID derives the news document id from an item link. Short links are stored as
// unpadded base64url, which is reversible and never contains '/'. Links too long
// for that fall back to a sha256 digest.
func LinkID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", ErrEmptyLink
	}

	if base64.RawURLEncoding.EncodedLen(len(link)) <= maxEncodedLinkID {
		return base64.RawURLEncoding.EncodeToString([]byte(link)), nil
	}

	sum := sha256.Sum256([]byte(link))
	return hashedLinkIDPrefix + hex.EncodeToString(sum[:]), nil
}

// DecodeLinkID returns the link behind a base64 id. Hashed ids cannot be reversed.
func DecodeLinkID(id string) (string, error) {
	if strings.HasPrefix(id, hashedLinkIDPrefix) && len(id) == len(hashedLinkIDPrefix)+sha256.Size*2 {
		return "", fmt.Errorf("link id %q is a digest and cannot be decoded", id)
	}

	decoded, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", fmt.Errorf("failed to decode link id: %w", err)
	}
	return string(decoded), nil
}

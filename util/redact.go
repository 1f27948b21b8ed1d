package util

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// RedactEndpoint keeps scheme and host of an endpoint and replaces the rest
// (which for most vendors embeds an api key) with a short digest.
func RedactEndpoint(endpoint string) string {
	hasher := sha256.New()
	hasher.Write([]byte(endpoint))
	hash := hex.EncodeToString(hasher.Sum(nil))[:12]

	parsedURL, err := url.Parse(endpoint)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return hash
	}

	return parsedURL.Scheme + "://" + parsedURL.Host + "#hash=" + hash
}

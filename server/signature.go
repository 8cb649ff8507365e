package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the HMAC of a GitHub webhook body.
const SignatureHeader = "X-Hub-Signature-256"

const signaturePrefix = "sha256="

// VerifySignature checks header against the HMAC-SHA256 of body keyed by secret.
// With an empty secret every request is accepted.
func VerifySignature(body []byte, header, secret string) bool {
	if secret == "" {
		return true
	}
	digest, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok || digest == "" {
		return false
	}
	return hmac.Equal([]byte(digest), []byte(Sign(body, secret)))
}

// Sign returns the hex HMAC-SHA256 of body keyed by secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Package fileurl signs download links for archived files so they can be
// opened without the bearer header.
package fileurl

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

const pathPrefix = "/api/v1/archive/"

var now = time.Now

// SignURL returns a relative link carrying an expiry and an HMAC-SHA256
// signature over "{id}:{expires}".
func SignURL(id, secret string, ttl time.Duration) string {
	expires := now().Add(ttl).Unix()
	return fmt.Sprintf("%s%s?expires=%d&sig=%s", pathPrefix, id, expires, computeHMAC(id, expires, secret))
}

// Verify reports whether sig matches and the link has not expired.
func Verify(id, expires, sig, secret string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return false
	}
	if now().Unix() > exp {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(computeHMAC(id, exp, secret)))
}

func computeHMAC(id string, expires int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%s:%d", id, expires)))
	return hex.EncodeToString(mac.Sum(nil))
}

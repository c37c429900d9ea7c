package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderSignature = "X-Slack-Signature"
	HeaderTimestamp = "X-Slack-Request-Timestamp"

	signatureVersion = "v0"
	maxRequestSkew   = 5 * time.Minute
)

var (
	ErrInvalidSignature = errors.New("slack: invalid request signature")
	ErrStaleRequest     = errors.New("slack: stale request timestamp")
)

// VerifySignature valida la firma v0 de Slack: HMAC-SHA256 de "v0:<timestamp>:<body>".
func VerifySignature(secret, timestamp, signature string, body []byte, now time.Time) error {
	if secret == "" || timestamp == "" || signature == "" {
		return ErrInvalidSignature
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if math.Abs(now.Sub(time.Unix(ts, 0)).Seconds()) > maxRequestSkew.Seconds() {
		return ErrStaleRequest
	}

	expected := Sign(secret, timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign calcula el header X-Slack-Signature para un cuerpo dado.
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signatureVersion + ":" + timestamp + ":"))
	mac.Write(body)
	return signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))
}

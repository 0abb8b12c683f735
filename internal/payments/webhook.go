package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event types delivered by the processor's webhook.
const EventIntentSucceeded = "payment_intent.succeeded"

// DefaultTolerance bounds how old a signed webhook timestamp may be
// before we reject it as a possible replay.
const DefaultTolerance = 5 * time.Minute

// ErrInvalidSignature covers every signature-verification failure; the
// caller must not act on any part of the payload when it sees this.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// Event is the envelope the processor posts to our webhook endpoint.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object Intent `json:"object"`
	} `json:"data"`
}

// VerifySignature checks the signature header against the shared
// webhook secret. The header has the form "t=<unix>,v1=<hex>" where v1
// is HMAC-SHA256 over "<t>.<payload>". now is injectable for tests.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, v)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > DefaultTolerance || age < -DefaultTolerance {
		return ErrInvalidSignature
	}

	expected := ComputeSignature(payload, timestamp, secret)
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// ComputeSignature produces the raw HMAC for a payload at a timestamp.
// Exported so tests can sign their own fixtures.
func ComputeSignature(payload []byte, timestamp int64, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignatureHeader renders the header a processor would send for a
// payload. Used by tests and the local webhook replay tool.
func SignatureHeader(payload []byte, timestamp int64, secret string) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp,
		hex.EncodeToString(ComputeSignature(payload, timestamp, secret)))
}

// ParseEvent decodes a verified webhook payload.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	if ev.Type == "" {
		return nil, errors.New("webhook payload missing event type")
	}
	return &ev, nil
}

// MetadataCourseIDs parses the comma-separated course id list our
// frontend stores on the intent at creation time.
func MetadataCourseIDs(meta map[string]string) ([]int64, error) {
	raw := strings.TrimSpace(meta["courseIds"])
	if raw == "" {
		return nil, errors.New("event metadata missing courseIds")
	}
	var ids []int64
	for _, field := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad course id %q in event metadata", field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

package event

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainEventLog is the domain-separation prefix for log content hashes.
// The version suffix allows future algorithm or format migration without
// colliding with existing hashes.
const DomainEventLog = "typetrace/eventlog/v1"

// LogHash computes the content-addressed identity of a log: the SHA-256 of
// the canonical serialization under the event-log domain. Two logs hash
// equal exactly when their canonical forms are byte-equal, regardless of
// how either was originally encoded.
func LogHash(log []Entry) (string, error) {
	canonical, err := MarshalCanonical(log)
	if err != nil {
		return "", fmt.Errorf("log hash: %w", err)
	}
	return HashWithDomain(DomainEventLog, canonical), nil
}

// HashWithDomain computes SHA256(domain + 0x00 + data) as a hex string.
// The null separator prevents ambiguity between domain and data bytes.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

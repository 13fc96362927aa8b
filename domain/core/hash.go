package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, enough for log lines and ETags
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Domain-specific hash types
type (
	DatasetFingerprint Hash
	RequestHash        Hash
)

func (h DatasetFingerprint) String() string { return Hash(h).String() }
func (h RequestHash) String() string        { return Hash(h).String() }

// ComputeRequestHash fingerprints a request payload against the dataset it runs on.
// encoding/json sorts map keys, so equal requests hash equally.
func ComputeRequestHash(dataset DatasetFingerprint, request interface{}) (RequestHash, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	data := append([]byte(dataset), payload...)
	return RequestHash(NewHash(data)), nil
}

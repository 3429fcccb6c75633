package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
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

// Short returns the first 12 hex characters, enough to tell fingerprints apart in reports
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// InputFingerprint identifies a calculation by its inputs. Identical inputs
// always produce identical fingerprints.
type InputFingerprint Hash

func (h InputFingerprint) String() string { return Hash(h).String() }
func (h InputFingerprint) Short() string  { return Hash(h).Short() }

// ComputeInputFingerprint hashes a calculator kind together with its design
// and effect inputs. Map keys are sorted so field order never matters.
func ComputeInputFingerprint(kind string, fields map[string]interface{}) (InputFingerprint, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	data.WriteString(kind)
	for _, key := range keys {
		encoded, err := json.Marshal(fields[key])
		if err != nil {
			return "", fmt.Errorf("fingerprint field %s: %w", key, err)
		}
		data.WriteString("|")
		data.WriteString(key)
		data.WriteString("=")
		data.Write(encoded)
	}

	return InputFingerprint(NewHash([]byte(data.String()))), nil
}

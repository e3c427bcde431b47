// Package fingerprint produces deterministic content hashes for scraped
// payloads so unchanged cycles can be detected and reported.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Generate creates a SHA256 fingerprint of the canonicalized value. Map keys
// are sorted recursively so key order never changes the hash.
func Generate(data any) string {
	canonical := canonicalize(data)
	hash := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(hash[:])
}

// GenerateFromValue fingerprints any JSON-marshalable value by round-tripping
// it through JSON first, so struct field order and typed wrappers never leak
// into the hash.
func GenerateFromValue(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return "", err
	}
	return Generate(decoded), nil
}

// HasChanged compares two fingerprints.
func HasChanged(oldFingerprint, newFingerprint string) bool {
	return oldFingerprint != newFingerprint
}

func canonicalize(data any) string {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		result := "{"
		for i, k := range keys {
			if i > 0 {
				result += ","
			}
			keyJSON, _ := json.Marshal(k)
			result += string(keyJSON) + ":" + canonicalize(v[k])
		}
		return result + "}"
	case []any:
		result := "["
		for i, e := range v {
			if i > 0 {
				result += ","
			}
			result += canonicalize(e)
		}
		return result + "]"
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

// redactPolicy decides what happens to a logged value based on its key.
type redactPolicy struct {
	enabled bool
	salt    string
	secret  []string
	hashed  map[string]bool
}

var (
	policyOnce sync.Once
	policy     redactPolicy
)

// activePolicy reads LOG_REDACTION_ENABLED and LOG_HASH_SALT on first use.
func activePolicy() redactPolicy {
	policyOnce.Do(func() {
		off := map[string]bool{"0": true, "false": true, "no": true, "off": true}
		policy = redactPolicy{
			enabled: !off[strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED")))],
			salt:    strings.TrimSpace(os.Getenv("LOG_HASH_SALT")),
			secret:  []string{"token", "authorization", "password", "secret", "api_key", "apikey", "credential", "cookie"},
			// Submitters are anonymous; client addresses are kept only as salted hashes.
			hashed: map[string]bool{"client_ip": true, "remote_addr": true},
		}
	})
	return policy
}

func sanitizeKVs(kv []interface{}) []interface{} {
	p := activePolicy()
	if !p.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		name := stringify(out[i])
		out[i] = name
		out[i+1] = p.apply(normKey(name), out[i+1])
	}
	return out
}

func (p redactPolicy) apply(key string, val interface{}) interface{} {
	if key == "" {
		return val
	}
	for _, s := range p.secret {
		if strings.Contains(key, s) {
			return "[REDACTED]"
		}
	}
	if p.hashed[key] {
		return p.digest(val)
	}
	if nested, ok := val.(map[string]interface{}); ok {
		clean := make(map[string]interface{}, len(nested))
		for k, v := range nested {
			clean[k] = p.apply(normKey(k), v)
		}
		return clean
	}
	return val
}

func (p redactPolicy) digest(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

func normKey(k string) string { return strings.ToLower(strings.TrimSpace(k)) }

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

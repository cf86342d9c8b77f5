package credential

import (
	"os"
	"strings"

	"rayee-server-go/internal/platform/errors"
)

// slotNames are the fixed environment slots read at startup, in
// precedence order. The count is fixed; unset slots are dropped.
var slotNames = [5]string{
	"GROQ_API_KEY",
	"GROQ_API_KEY_2",
	"GROQ_API_KEY_3",
	"GROQ_API_KEY_4",
	"GROQ_API_KEY_5",
}

// Pool is an immutable, ordered collection of API credentials. It is
// loaded once at process start and shared read-only for the process
// lifetime, so concurrent use needs no locking.
type Pool struct {
	keys []string
}

// Load reads the fixed credential slots from the process environment.
// The relative order of populated slots is preserved. An empty result
// is a fatal configuration error: the service has no degraded mode.
func Load() (*Pool, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the credential slots through the provided lookup.
func LoadFrom(lookup func(string) string) (*Pool, error) {
	keys := make([]string, 0, len(slotNames))
	for _, name := range slotNames {
		if v := strings.TrimSpace(lookup(name)); v != "" {
			keys = append(keys, v)
		}
	}

	if len(keys) == 0 {
		return nil, errors.New(
			errors.KindConfig,
			"credential.load",
			"no API credentials configured; set GROQ_API_KEY",
		)
	}

	return &Pool{keys: keys}, nil
}

// NewPool builds a pool from explicit keys, dropping empty entries.
// Intended for tests and programmatic construction.
func NewPool(keys ...string) *Pool {
	kept := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k) != "" {
			kept = append(kept, k)
		}
	}
	return &Pool{keys: kept}
}

// Len reports the number of usable credentials.
func (p *Pool) Len() int {
	return len(p.keys)
}

// At returns the credential at position i in configured precedence order.
func (p *Pool) At(i int) string {
	return p.keys[i]
}

// Keys returns a copy of the ordered credential list.
func (p *Pool) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

package jwksclient

import (
	"sync"

	"github.com/auth0/go-jwks-client/jwks"
)

// keyCache maps a kid to its resolved signing key for the lifetime of the
// Client. Entries are never evicted, refreshed or invalidated.
type keyCache struct {
	mu   sync.RWMutex
	keys map[string]jwks.SigningKey
}

func newKeyCache() *keyCache {
	return &keyCache{keys: make(map[string]jwks.SigningKey)}
}

func (c *keyCache) get(kid string) (jwks.SigningKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key, ok := c.keys[kid]
	return key, ok
}

// set stores key under kid and returns the number of cached keys.
func (c *keyCache) set(kid string, key jwks.SigningKey) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keys[kid] = key
	return len(c.keys)
}

func (c *keyCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.keys)
}

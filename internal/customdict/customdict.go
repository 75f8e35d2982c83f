package customdict

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "custom_phrases"

// CustomDict wraps a Redis client to store user phrases. Each phrase maps to
// its space separated pinyin spelling.
type CustomDict struct {
	client *redis.Client
	key    string
}

// New creates a new CustomDict with the provided Redis client.
func New(client *redis.Client) *CustomDict {
	return &CustomDict{client: client, key: defaultKey}
}

// Add inserts or replaces a phrase and its spelling.
func (cd *CustomDict) Add(phrase, spelling string) error {
	return cd.client.HSet(context.Background(), cd.key, phrase, spelling).Err()
}

// Remove deletes a phrase. It reports whether the phrase was present.
func (cd *CustomDict) Remove(phrase string) (bool, error) {
	n, err := cd.client.HDel(context.Background(), cd.key, phrase).Result()
	return n > 0, err
}

// All returns every stored phrase with its spelling.
func (cd *CustomDict) All() (map[string]string, error) {
	return cd.client.HGetAll(context.Background(), cd.key).Result()
}

package redis

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"enrollment-assessment/internal/domain"
	"github.com/redis/go-redis/v9"
)

// KVStore keeps visitor state in Redis as plain string keys:
//
//	SET assessment:visitor:{visitorID}:answers {json} EX ttl
//	SET assessment:visitor:{visitorID}:lead    {json} EX ttl
type KVStore struct {
	client *redis.Client
	ttl    time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewKVStore(client *redis.Client, ttl time.Duration) *KVStore {
	return &KVStore{
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, s.ttlWithJitter()).Err()
}

// SetMany writes all entries in one MULTI/EXEC transaction.
func (s *KVStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, s.key(key), value, s.ttlWithJitter())
		}
		return nil
	})
	return err
}

func (s *KVStore) key(key string) string {
	return "assessment:" + key
}

// ttlWithJitter adds up to 10% so visitors saved together do not expire together.
func (s *KVStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	jitterMax := int64(s.ttl) / 10
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}

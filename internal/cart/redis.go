package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ariefcatur/go-pokestore.git/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// RedisStore: satu hash per session (cart:{sid}), field = product_id,
// value = Entry sebagai JSON.
type RedisStore struct{ RDB *redis.Client }

func key(sid string) string { return fmt.Sprintf(redisx.KeyCart, sid) }

func (s *RedisStore) Get(ctx context.Context, sid, productID string) (Entry, bool, error) {
	v, err := s.RDB.HGet(ctx, key(sid), productID).Result()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(v), &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (s *RedisStore) Put(ctx context.Context, sid string, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := s.RDB.HSet(ctx, key(sid), e.ProductID, b).Err(); err != nil {
		return err
	}
	// refresh TTL tiap mutasi
	return s.RDB.Expire(ctx, key(sid), redisx.TTLCart).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sid, productID string) error {
	if err := s.RDB.HDel(ctx, key(sid), productID).Err(); err != nil {
		return err
	}
	return s.RDB.Expire(ctx, key(sid), redisx.TTLCart).Err()
}

func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	return s.RDB.Del(ctx, key(sid)).Err()
}

func (s *RedisStore) Enumerate(ctx context.Context, sid string) ([]Entry, error) {
	m, err := s.RDB.HGetAll(ctx, key(sid)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(m))
	for _, v := range m {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt < out[j].AddedAt })
	return out, nil
}

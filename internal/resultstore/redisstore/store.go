// Package redisstore implements resultstore.Store on Redis so several
// processes can share test case outcomes.
//
// Keys, under a configurable prefix:
//
//	<prefix>status:<id>  status string
//	<prefix>result:<id>  JSON encoded TestCaseResult
//	<prefix>index        set of every id with a key
//
// Status changes run in a WATCH transaction so the lifecycle check and the
// write cannot interleave with another writer.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/specialistvlad/dmngrid/internal/resultstore"
)

// DefaultPrefix is used when WithPrefix is not given.
const DefaultPrefix = "dmngrid:results:"

// Store is a Redis backed resultstore.Store.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ resultstore.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithTTL expires every key ttl after its last write. Zero keeps keys forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Store {
	return NewFromClient(redis.NewClient(&redis.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the server answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) statusKey(id string) string { return s.prefix + "status:" + id }
func (s *Store) resultKey(id string) string { return s.prefix + "result:" + id }
func (s *Store) indexKey() string           { return s.prefix + "index" }

func (s *Store) SetStatus(ctx context.Context, testCaseID string, status resultstore.Status) error {
	return s.transition(ctx, testCaseID, status, nil)
}

func (s *Store) GetStatus(ctx context.Context, testCaseID string) (resultstore.Status, error) {
	return readStatus(ctx, s.client, s.statusKey(testCaseID))
}

func (s *Store) SetResult(ctx context.Context, result resultstore.TestCaseResult) error {
	if err := resultstore.ValidateResult(result); err != nil {
		return err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result of test case '%s': %w", result.TestCaseID, err)
	}
	return s.transition(ctx, result.TestCaseID, result.Status, payload)
}

// transition changes the status of a case, and stores result when it is not
// nil, if the lifecycle allows it.
func (s *Store) transition(ctx context.Context, id string, to resultstore.Status, result []byte) error {
	key := s.statusKey(id)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		from, err := readStatus(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := resultstore.CheckTransition(from, to); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, string(to), s.ttl)
			if result != nil {
				p.Set(ctx, s.resultKey(id), result, s.ttl)
			}
			p.SAdd(ctx, s.indexKey(), id)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("status of test case '%s' changed concurrently: %w", id, err)
	}
	return err
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readStatus(ctx context.Context, c getter, key string) (resultstore.Status, error) {
	v, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return resultstore.StatusNotRun, nil
	}
	if err != nil {
		return "", fmt.Errorf("redis error reading status: %w", err)
	}
	return resultstore.Status(v), nil
}

func (s *Store) GetResult(ctx context.Context, testCaseID string) (*resultstore.TestCaseResult, bool, error) {
	data, err := s.client.Get(ctx, s.resultKey(testCaseID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis error reading result: %w", err)
	}
	var r resultstore.TestCaseResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false, fmt.Errorf("failed to decode result of test case '%s': %w", testCaseID, err)
	}
	return &r, true, nil
}

// Results skips ids whose result expired or was never written.
func (s *Store) Results(ctx context.Context) ([]resultstore.TestCaseResult, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error listing results: %w", err)
	}
	out := []resultstore.TestCaseResult{}
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.resultKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error reading results: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var r resultstore.TestCaseResult
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("failed to decode result of test case '%s': %w", ids[i], err)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TestCaseID < out[j].TestCaseID })
	return out, nil
}

func (s *Store) Clear(ctx context.Context) error {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("redis error listing results: %w", err)
	}
	keys := make([]string, 0, 2*len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.statusKey(id), s.resultKey(id))
	}
	keys = append(keys, s.indexKey())
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis error clearing results: %w", err)
	}
	return nil
}

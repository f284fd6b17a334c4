package logstore

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/dermalens/skin-advisor/internal/domain/stats"
)

// Key layout: logs:<YYYY-MM-DD> (list), stats:user:<user> (hash),
// stats:users (set), images:analyzed (set), plus caller-provided
// counter keys for the login rate limit window.
const (
	logKeyPrefix  = "logs:"
	userKeyPrefix = "stats:user:"
	usersKey      = "stats:users"
	imagesKey     = "images:analyzed"
)

// ValkeyStore persists usage logs and counters in a Valkey-compatible
// database.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client) *ValkeyStore {
	return &ValkeyStore{client: client}
}

func (s *ValkeyStore) AppendEntry(ctx context.Context, day string, entry stats.Entry, retention time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := logKeyPrefix + day
	if err := s.client.Do(ctx, s.client.B().Lpush().Key(key).Element(string(payload)).Build()).Error(); err != nil {
		return err
	}
	if retention > 0 {
		return s.client.Do(ctx, s.client.B().Expire().Key(key).Seconds(int64(retention/time.Second)).Build()).Error()
	}
	return nil
}

func (s *ValkeyStore) BumpUser(ctx context.Context, user string, lastUsed time.Time) error {
	key := userKeyPrefix + user
	if err := s.client.Do(ctx, s.client.B().Hincrby().Key(key).Field("count").Increment(1).Build()).Error(); err != nil {
		return err
	}
	cmd := s.client.B().Hset().Key(key).
		FieldValue().
		FieldValue("user", user).
		FieldValue("lastUsed", lastUsed.UTC().Format(time.RFC3339)).
		Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return err
	}
	return s.client.Do(ctx, s.client.B().Sadd().Key(usersKey).Member(user).Build()).Error()
}

func (s *ValkeyStore) MarkImage(ctx context.Context, hash string) error {
	return s.client.Do(ctx, s.client.B().Sadd().Key(imagesKey).Member(hash).Build()).Error()
}

func (s *ValkeyStore) EntriesByDay(ctx context.Context, day string, limit int) ([]stats.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	cmd := s.client.B().Lrange().Key(logKeyPrefix + day).Start(0).Stop(int64(limit - 1)).Build()
	raw, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]stats.Entry, 0, len(raw))
	for _, item := range raw {
		var entry stats.Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// A corrupt record should not hide the rest of the day.
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *ValkeyStore) Users(ctx context.Context) ([]stats.UserStat, error) {
	members, err := s.client.Do(ctx, s.client.B().Smembers().Key(usersKey).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]stats.UserStat, 0, len(members))
	for _, user := range members {
		fields, err := s.client.Do(ctx, s.client.B().Hgetall().Key(userKeyPrefix+user).Build()).AsStrMap()
		if err != nil {
			if valkey.IsValkeyNil(err) {
				continue
			}
			return nil, err
		}
		stat := stats.UserStat{User: user}
		if count, err := strconv.ParseInt(fields["count"], 10, 64); err == nil {
			stat.TotalAnalyses = count
		}
		if ts, err := time.Parse(time.RFC3339, fields["lastUsed"]); err == nil {
			stat.LastUsed = ts
		}
		out = append(out, stat)
	}
	return out, nil
}

func (s *ValkeyStore) UniqueImageCount(ctx context.Context) (int64, error) {
	count, err := s.client.Do(ctx, s.client.B().Scard().Key(imagesKey).Build()).AsInt64()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// IncrementAttempt bumps a fixed-window counter. The expiry is attached
// when the counter is created, so the window never slides.
func (s *ValkeyStore) IncrementAttempt(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.client.Do(ctx, s.client.B().Incr().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, err
	}
	if count == 1 && window > 0 {
		if err := s.client.Do(ctx, s.client.B().Expire().Key(key).Seconds(int64(window/time.Second)).Build()).Error(); err != nil {
			return count, err
		}
	}
	return count, nil
}

var _ stats.Store = (*ValkeyStore)(nil)

package kvstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultRedisHash    = "booking:state"
	redisChangesChannel = ":changes"
)

type redisChange struct {
	Key              string `json:"key"`
	Deleted          bool   `json:"deleted,omitempty"`
	SenderInstanceID string `json:"sender_instance_id"`
}

// Redis keeps every key as a field of one hash and announces writes on
// <hash>:changes so other instances can reload.
type Redis struct {
	client     *redis.Client
	hash       string
	instanceID string
}

func NewRedis(client *redis.Client, hash string) *Redis {
	return NewRedisWithInstanceID(client, hash, uuid.NewString())
}

// NewRedisWithInstanceID is NewRedis with a fixed instance id for tests.
func NewRedisWithInstanceID(client *redis.Client, hash, instanceID string) *Redis {
	if hash == "" {
		hash = DefaultRedisHash
	}
	return &Redis{client: client, hash: hash, instanceID: instanceID}
}

func (r *Redis) channel() string { return r.hash + redisChangesChannel }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.HGet(ctx, r.hash, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.HSet(ctx, r.hash, key, value).Err(); err != nil {
		return err
	}
	r.announce(ctx, redisChange{Key: key})
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.HDel(ctx, r.hash, key).Err(); err != nil {
		return err
	}
	r.announce(ctx, redisChange{Key: key, Deleted: true})
	return nil
}

func (r *Redis) announce(ctx context.Context, c redisChange) {
	c.SenderInstanceID = r.instanceID
	payload, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := r.client.Publish(ctx, r.channel(), payload).Err(); err != nil {
		log.Warn().Err(err).Str("key", c.Key).Msg("kvstore change publish failed")
	}
}

// Close does not close the shared client.
func (r *Redis) Close() error { return nil }

// Watch subscribes to the change channel. Announcements from this instance
// are skipped; others are resolved to the current value before delivery.
func (r *Redis) Watch(ctx context.Context) (<-chan Change, error) {
	pubsub := r.client.Subscribe(ctx, r.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var c redisChange
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					continue
				}
				if c.SenderInstanceID == r.instanceID {
					continue
				}
				change := Change{Key: c.Key, Deleted: c.Deleted}
				if !c.Deleted {
					value, ok, err := r.Get(ctx, c.Key)
					if err != nil {
						log.Warn().Err(err).Str("key", c.Key).Msg("kvstore change reload failed")
						continue
					}
					change.Value = value
					change.Deleted = !ok
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

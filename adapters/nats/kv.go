package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/netconstructor/elasticsearch/internal/codec"
)

var (
	ErrKeyNotFound    = errors.New("key not found")
	ErrBucketRequired = errors.New("bucket is required")
)

const defaultOpTimeout = 5 * time.Second

type KvConfig struct {
	Connect Connector
	Bucket  string
	// Storage defaults to jetstream.FileStorage.
	Storage jetstream.StorageType
	// History is the number of revisions kept per key. Defaults to 1.
	History uint8
	Codec   codec.Codec
	Log     *slog.Logger
}

// KvStore is a typed view over a JetStream key value bucket.
type KvStore[T any] struct {
	kv     jetstream.KeyValue
	codec  codec.Codec
	log    *slog.Logger
	bucket string
	close  closeFunc
}

func NewKvStore[T any](ctx context.Context, cfg KvConfig) (*KvStore[T], error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}

	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("bucket", cfg.Bucket))

	nc, disconnect, err := doConnect()
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		disconnect()
		return nil, err
	}

	history := cfg.History
	if history == 0 {
		history = 1
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  cfg.Bucket,
		Storage: cfg.Storage,
		History: history,
	})
	if err != nil {
		disconnect()
		return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
	}

	c := cfg.Codec
	if c == nil {
		c = codec.JSONCodec{}
	}

	log.Debug("kv bucket ready")
	return &KvStore[T]{kv: kv, codec: c, log: log, bucket: cfg.Bucket, close: disconnect}, nil
}

// Close releases the underlying connection.
func (k *KvStore[T]) Close() {
	if k.close != nil {
		k.close()
	}
}

func (k *KvStore[T]) Set(ctx context.Context, key string, v T) (revision uint64, err error) {
	data, err := k.codec.Marshal(v)
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()
	return k.kv.Put(ctx, key, data)
}

func (k *KvStore[T]) Get(ctx context.Context, key string) (out T, err error) {
	out, _, err = k.GetRevision(ctx, key)
	return out, err
}

// GetRevision returns the value and the revision it was stored at.
func (k *KvStore[T]) GetRevision(ctx context.Context, key string) (out T, revision uint64, err error) {
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	v, err := k.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return out, 0, ErrKeyNotFound
		}
		return out, 0, fmt.Errorf("get %s from %s: %w", key, k.bucket, err)
	}
	if err := k.codec.Unmarshal(v.Value(), &out); err != nil {
		return out, 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, v.Revision(), nil
}

// Swap stores v only if key is still at revision. A zero revision means the
// key must not exist yet.
func (k *KvStore[T]) Swap(ctx context.Context, key string, v T, revision uint64) (uint64, error) {
	data, err := k.codec.Marshal(v)
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()
	if revision == 0 {
		return k.kv.Create(ctx, key, data)
	}
	return k.kv.Update(ctx, key, data, revision)
}

func (k *KvStore[T]) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()
	return k.kv.Delete(ctx, key)
}

// Keys lists every live key in the bucket.
func (k *KvStore[T]) Keys(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	lister, err := k.kv.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lister.Stop() }()

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}
	return keys, nil
}

// Watch calls fn for every value put under key, starting with the current
// one, until ctx is done. Deletes are skipped.
func (k *KvStore[T]) Watch(ctx context.Context, key string, fn func(v T, revision uint64)) error {
	w, err := k.kv.Watch(ctx, key)
	if err != nil {
		return fmt.Errorf("watch %s: %w", key, err)
	}
	go func() {
		defer func() { _ = w.Stop() }()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Updates():
				if !ok {
					return
				}
				// nil marks the end of the initial values
				if e == nil || e.Operation() != jetstream.KeyValuePut {
					continue
				}
				var v T
				if err := k.codec.Unmarshal(e.Value(), &v); err != nil {
					k.log.Warn("skip undecodable value",
						slog.String("key", e.Key()),
						slog.Uint64("revision", e.Revision()),
						slog.Any("error", err),
					)
					continue
				}
				fn(v, e.Revision())
			}
		}
	}()
	return nil
}

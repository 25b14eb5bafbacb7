package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/netconstructor/elasticsearch/core/routing"
	"github.com/netconstructor/elasticsearch/internal/codec"
)

// SnapshotKey is the key under which the current routing table is stored.
const SnapshotKey = "routing.table"

const defaultSnapshotBucket = "routing_snapshots"

type SnapshotStoreConfig struct {
	Connect Connector
	// Bucket defaults to "routing_snapshots".
	Bucket string
	// Codec defaults to indented JSON so stored snapshots stay readable with
	// the nats CLI.
	Codec codec.Codec
	Log   *slog.Logger
}

// SnapshotStore keeps the latest routing table in a JetStream KV bucket. It
// is both the Source the router pulls from and the Publisher the allocation
// side pushes to.
type SnapshotStore struct {
	kv  *KvStore[json.RawMessage]
	log *slog.Logger
}

func NewSnapshotStore(ctx context.Context, cfg SnapshotStoreConfig) (*SnapshotStore, error) {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultSnapshotBucket
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "snapshot_store"))
	c := cfg.Codec
	if c == nil {
		c = codec.IndentedJSONCodec{}
	}

	kv, err := NewKvStore[json.RawMessage](ctx, KvConfig{
		Connect: cfg.Connect,
		Bucket:  bucket,
		Storage: jetstream.MemoryStorage,
		Codec:   c,
		Log:     log,
	})
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{kv: kv, log: log}, nil
}

func (s *SnapshotStore) Close() { s.kv.Close() }

// Current returns the stored snapshot, or routing.ErrNoSnapshot if none was
// published yet. Every call decodes fresh entry instances.
func (s *SnapshotStore) Current(ctx context.Context) (*routing.Table, error) {
	t, _, err := s.current(ctx)
	return t, err
}

func (s *SnapshotStore) current(ctx context.Context) (*routing.Table, uint64, error) {
	raw, rev, err := s.kv.GetRevision(ctx, SnapshotKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, 0, routing.ErrNoSnapshot
		}
		return nil, 0, err
	}
	t, err := routing.DecodeTable(raw)
	if err != nil {
		return nil, 0, err
	}
	return t, rev, nil
}

// Publish stores t unless the stored snapshot has the same or a newer
// version. Concurrent publishers race on the KV revision; the loser gets
// routing.ErrStaleSnapshot or retries against the newer revision.
func (s *SnapshotStore) Publish(ctx context.Context, t *routing.Table) error {
	if t == nil {
		return routing.ErrNilSnapshot
	}
	data, err := t.MarshalJSON()
	if err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		cur, rev, err := s.current(ctx)
		if err != nil && !errors.Is(err, routing.ErrNoSnapshot) {
			return err
		}
		if cur != nil && t.Version() <= cur.Version() {
			return fmt.Errorf("nats: publish version %d over %d: %w", t.Version(), cur.Version(), routing.ErrStaleSnapshot)
		}
		_, err = s.kv.Swap(ctx, SnapshotKey, data, rev)
		if err == nil {
			s.log.Info("published routing snapshot",
				slog.String("id", t.ID()),
				slog.Int64("version", t.Version()),
			)
			return nil
		}
		if !errors.Is(err, jetstream.ErrKeyExists) && !isWrongSequence(err) {
			return fmt.Errorf("nats: publish snapshot: %w", err)
		}
		s.log.Debug("snapshot revision moved, retrying", slog.Uint64("revision", rev))
	}
}

func isWrongSequence(err error) bool {
	var apiErr *jetstream.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}

// Watch calls fn with every snapshot published from now on, starting with the
// current one, until ctx is done.
func (s *SnapshotStore) Watch(ctx context.Context, fn func(*routing.Table)) error {
	s.log.Debug("watching routing snapshots")
	return s.kv.Watch(ctx, SnapshotKey, func(raw json.RawMessage, revision uint64) {
		t, err := routing.DecodeTable(raw)
		if err != nil {
			s.log.Warn("skip undecodable snapshot", slog.Uint64("revision", revision), slog.Any("error", err))
			return
		}
		fn(t)
	})
}

// Follow keeps r on the newest published snapshot until ctx is done.
// onAdopted, if not nil, is called after r adopted a snapshot.
func (s *SnapshotStore) Follow(ctx context.Context, r *routing.Router, onAdopted func(*routing.Table)) error {
	return s.Watch(ctx, func(t *routing.Table) {
		err := r.Update(t)
		switch {
		case err == nil:
			if onAdopted != nil {
				onAdopted(t)
			}
		case !errors.Is(err, routing.ErrStaleSnapshot):
			s.log.Error("failed to adopt snapshot", slog.Any("error", err))
		}
	})
}

var (
	_ routing.Source    = (*SnapshotStore)(nil)
	_ routing.Publisher = (*SnapshotStore)(nil)
)

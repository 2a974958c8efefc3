package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/showrunner/go/internal/game"
)

// KVConfig holds connection settings for the JetStream key-value store.
type KVConfig struct {
	URL           string
	Bucket        string
	Key           string
	MaxReconnects int
	ReconnectWait time.Duration
	MergeRetries  int // CAS attempts for a partial update under contention
}

// DefaultKVConfig returns the default JetStream configuration.
func DefaultKVConfig() KVConfig {
	return KVConfig{
		URL:           nats.DefaultURL,
		Bucket:        "GAME_STATE",
		Key:           "master",
		MaxReconnects: -1, // infinite
		ReconnectWait: 2 * time.Second,
		MergeRetries:  5,
	}
}

// KV backs the Store with a single JetStream key-value entry. The KV bucket
// gives exactly the semantics the document needs: whole-value writes,
// revision-checked merges, and an ordered per-watcher change feed.
type KV struct {
	nc     *nats.Conn
	kv     jetstream.KeyValue
	config KVConfig
}

// NewKV connects to NATS and ensures the state bucket exists.
func NewKV(ctx context.Context, cfg KVConfig) (*KV, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	kv, err := js.KeyValue(ctx, cfg.Bucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      cfg.Bucket,
			Description: "shared game document",
			History:     1,
		})
		if err == nil {
			log.Info().Str("bucket", cfg.Bucket).Msg("created state bucket")
		}
	}
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure state bucket: %w", err)
	}

	return &KV{nc: nc, kv: kv, config: cfg}, nil
}

func (s *KV) Write(ctx context.Context, doc game.GameState) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := s.kv.Put(ctx, s.config.Key, data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Update merges fields into the current entry under a revision check, so a
// merge never clobbers a write it has not seen. Contention only happens when
// two controllers race, which the role model forbids, so a handful of
// retries is plenty.
func (s *KV) Update(ctx context.Context, fields Fields) error {
	var lastErr error
	for attempt := 0; attempt < s.config.MergeRetries; attempt++ {
		entry, err := s.kv.Get(ctx, s.config.Key)
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return ErrNoDocument
		}
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}

		var doc game.GameState
		if err := json.Unmarshal(entry.Value(), &doc); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		merged, err := mergeFields(doc, fields)
		if err != nil {
			return err
		}
		data, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}

		if _, err := s.kv.Update(ctx, s.config.Key, data, entry.Revision()); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("update document after %d attempts: %w", s.config.MergeRetries, lastErr)
}

func (s *KV) Subscribe(ctx context.Context, fn func(game.GameState)) (func(), error) {
	watcher, err := s.kv.Watch(ctx, s.config.Key)
	if err != nil {
		return nil, fmt.Errorf("watch document: %w", err)
	}

	go func() {
		for entry := range watcher.Updates() {
			if entry == nil {
				// End-of-initial-replay marker.
				continue
			}
			if entry.Operation() != jetstream.KeyValuePut {
				continue
			}
			var doc game.GameState
			if err := json.Unmarshal(entry.Value(), &doc); err != nil {
				log.Error().Err(err).Uint64("revision", entry.Revision()).Msg("skipping undecodable document revision")
				continue
			}
			fn(doc)
		}
	}()

	return func() {
		if err := watcher.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop document watcher")
		}
	}, nil
}

func (s *KV) Connected() bool {
	return s.nc.IsConnected()
}

// Close tears down the NATS connection.
func (s *KV) Close() {
	s.nc.Close()
}

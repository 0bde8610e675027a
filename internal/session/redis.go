package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/domain/docmodel"
	"github.com/anmkhn/tradedoc-qa/internal/metrics"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

// Redis is a Store keeping session state as JSON blobs so sessions survive a
// process restart. The vector index itself lives in Qdrant; only metadata,
// chunks and tables are kept here.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// GetRedisStore connects to REDIS_ADDR (falling back to the configured
// default) and returns nil when Redis is unreachable, letting the caller
// fall back to the in-memory store.
func GetRedisStore(ctx context.Context) *Redis {
	logger := logging.NewLogger("Redis SessionStore")

	client := redis.NewClient(&redis.Options{
		Addr:                  config.Env("REDIS_ADDR", config.RedisAddr),
		DB:                    config.RedisSessionDB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline", "error", err.Error())
		return nil
	}

	s := &Redis{client: client, ttl: config.RedisSessionTTL, logger: logger}
	go s.closeOnDone(ctx)
	return s
}

// NewRedisStore wraps an existing client; used by tests with miniredis.
func NewRedisStore(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, logger: logging.NewLogger("Redis SessionStore")}
}

func (r *Redis) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	r.logger.Info("Closing Redis session store")
	if err := r.client.Close(); err != nil {
		r.logger.Error("Error closing redis client", "error", err)
	}
}

func key(id, field string) string {
	return "session:" + id + ":" + field
}

func (r *Redis) GetOrCreate(ctx context.Context, id string) error {
	created, err := r.client.SetNX(ctx, key(id, "exists"), "1", r.ttl).Result()
	if err != nil {
		return fmt.Errorf("session create: %w", err)
	}
	if created {
		metrics.IncrementActiveSessions()
		r.logger.Info("Created session", "session", id)
	}
	return nil
}

func (r *Redis) exists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, key(id, "exists")).Result()
	return n > 0, err
}

func (r *Redis) readJSON(ctx context.Context, id, field string, v any) error {
	raw, err := r.client.Get(ctx, key(id, field)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), v)
}

func (r *Redis) writeJSON(ctx context.Context, id, field string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key(id, field), raw, r.ttl).Err()
}

func (r *Redis) AppendFiles(ctx context.Context, id string, names ...string) error {
	ok, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return docmodel.ErrSessionNotFound
	}
	var files []string
	if err := r.readJSON(ctx, id, "files", &files); err != nil {
		return err
	}
	return r.writeJSON(ctx, id, "files", append(files, names...))
}

func (r *Redis) AppendChunks(ctx context.Context, id string, chunks []docmodel.Chunk) error {
	ok, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return docmodel.ErrSessionNotFound
	}
	var existing []docmodel.Chunk
	if err := r.readJSON(ctx, id, "chunks", &existing); err != nil {
		return err
	}
	return r.writeJSON(ctx, id, "chunks", append(existing, chunks...))
}

func (r *Redis) AppendTables(ctx context.Context, id string, tables []docmodel.TableRecord) error {
	ok, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return docmodel.ErrSessionNotFound
	}
	var existing []docmodel.TableRecord
	if err := r.readJSON(ctx, id, "tables", &existing); err != nil {
		return err
	}
	return r.writeJSON(ctx, id, "tables", appendUniqueTables(existing, tables))
}

func (r *Redis) SetFilter(ctx context.Context, id string, files []string) error {
	ok, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return docmodel.ErrSessionNotFound
	}
	var names []string
	if err := r.readJSON(ctx, id, "files", &names); err != nil {
		return err
	}
	if err := validateFilter(names, files); err != nil {
		return err
	}
	return r.writeJSON(ctx, id, "filter", files)
}

func (r *Redis) SaveArtifact(ctx context.Context, id, kind string, payload json.RawMessage) error {
	ok, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return docmodel.ErrSessionNotFound
	}
	if err := r.client.HSet(ctx, key(id, "artifacts"), kind, string(payload)).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, key(id, "artifacts"), r.ttl).Err()
}

func (r *Redis) Artifacts(ctx context.Context, id string) (map[string]json.RawMessage, error) {
	ok, err := r.exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, docmodel.ErrSessionNotFound
	}
	raw, err := r.client.HGetAll(ctx, key(id, "artifacts")).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		out[k] = json.RawMessage(v)
	}
	return out, nil
}

func (r *Redis) Get(ctx context.Context, id string) (Snapshot, bool, error) {
	ok, err := r.exists(ctx, id)
	if err != nil || !ok {
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := r.readJSON(ctx, id, "files", &snap.FileNames); err != nil {
		return Snapshot{}, false, err
	}
	if err := r.readJSON(ctx, id, "filter", &snap.Filter); err != nil {
		return Snapshot{}, false, err
	}
	if err := r.readJSON(ctx, id, "chunks", &snap.Chunks); err != nil {
		return Snapshot{}, false, err
	}
	if err := r.readJSON(ctx, id, "tables", &snap.Tables); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func (r *Redis) Destroy(ctx context.Context, id string) error {
	existed, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if err := r.client.Del(ctx,
		key(id, "exists"),
		key(id, "filter"),
		key(id, "files"),
		key(id, "chunks"),
		key(id, "tables"),
		key(id, "artifacts"),
	).Err(); err != nil {
		return err
	}
	// The gauge only tracks explicit lifecycle events; sessions that expire
	// via TTL are not observed here.
	if existed {
		metrics.DecrementActiveSessions()
		r.logger.Info("Destroyed session", "session", id)
	}
	return nil
}

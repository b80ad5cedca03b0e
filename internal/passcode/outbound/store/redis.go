package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/pkg/goerror"
	"github.com/shandysiswandi/passgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRedisPrefix     = "passcode:"
	defaultRedisGrace      = time.Minute
	defaultRedisMaxRetries = 8
	scanCount              = 200
)

// RedisConfig configures the redis-backed store.
type RedisConfig struct {
	// Prefix namespaces every key (default "passcode:").
	Prefix string
	// Grace keeps a record in redis this long past its expiry so verification
	// can still report it as expired rather than missing.
	Grace time.Duration
	// MaxRetries bounds optimistic transaction retries in Mutate.
	MaxRetries uint64
}

// redisRecord is the hash layout of one record. Times are unix nanoseconds
// so a record read back compares equal to the one written.
type redisRecord struct {
	Email     string `redis:"email"`
	Tenant    string `redis:"tenant"`
	Code      string `redis:"code"`
	IssuedAt  int64  `redis:"issued_at"`
	ExpiresAt int64  `redis:"expires_at"`
	Attempts  int    `redis:"attempts"`
}

func toRedisRecord(rec entity.Record) redisRecord {
	return redisRecord{
		Email:     rec.Identity.Email,
		Tenant:    rec.Identity.Tenant,
		Code:      rec.Code,
		IssuedAt:  rec.IssuedAt.UnixNano(),
		ExpiresAt: rec.ExpiresAt.UnixNano(),
		Attempts:  rec.Attempts,
	}
}

func (r redisRecord) entity() entity.Record {
	return entity.Record{
		Identity:  entity.Identity{Email: r.Email, Tenant: r.Tenant},
		Code:      r.Code,
		IssuedAt:  time.Unix(0, r.IssuedAt).UTC(),
		ExpiresAt: time.Unix(0, r.ExpiresAt).UTC(),
		Attempts:  r.Attempts,
	}
}

// Redis shares records across instances. Each record is a hash that redis
// itself expires Grace after ExpiresAt; Mutate is a WATCH/MULTI transaction
// retried on conflict.
type Redis struct {
	client     redis.UniversalClient
	ins        instrument.Instrumentation
	prefix     string
	pattern    string
	grace      time.Duration
	maxRetries uint64
}

func NewRedis(client redis.UniversalClient, ins instrument.Instrumentation, cfg RedisConfig) *Redis {
	if cfg.Prefix == "" {
		cfg.Prefix = defaultRedisPrefix
	}
	if cfg.Grace <= 0 {
		cfg.Grace = defaultRedisGrace
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultRedisMaxRetries
	}

	return &Redis{
		client:     client,
		ins:        ins,
		prefix:     cfg.Prefix,
		pattern:    scanPattern(cfg.Prefix),
		grace:      cfg.Grace,
		maxRetries: cfg.MaxRetries,
	}
}

// scanPattern matches every key under prefix. Glob metacharacters in the
// prefix are escaped so they match literally.
func scanPattern(prefix string) string {
	var sb strings.Builder
	for _, c := range prefix {
		if strings.ContainsRune(`*?[]\^`, c) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	sb.WriteByte('*')
	return sb.String()
}

func (r *Redis) key(id entity.Identity) string {
	return r.prefix + id.Key()
}

func (r *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("passcode.outbound.store").Start(ctx, name)
}

func recordErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *Redis) Put(ctx context.Context, rec entity.Record) error {
	ctx, span := r.startSpan(ctx, "Redis.Put")
	defer span.End()

	key := r.key(rec.Identity)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, toRedisRecord(rec))
		p.PExpireAt(ctx, key, rec.ExpiresAt.Add(r.grace))
		return nil
	})
	return recordErr(span, err)
}

// Get returns goerror.ErrNotFound when nothing is stored for id.
func (r *Redis) Get(ctx context.Context, id entity.Identity) (*entity.Record, error) {
	ctx, span := r.startSpan(ctx, "Redis.Get")
	defer span.End()

	rec, err := r.load(ctx, r.client, r.key(id))
	if err != nil {
		return nil, recordErr(span, err)
	}
	if rec == nil {
		return nil, goerror.ErrNotFound
	}
	return rec, nil
}

func (r *Redis) Delete(ctx context.Context, id entity.Identity) error {
	ctx, span := r.startSpan(ctx, "Redis.Delete")
	defer span.End()

	return recordErr(span, r.client.Del(ctx, r.key(id)).Err())
}

func (r *Redis) Entries(ctx context.Context) ([]entity.Record, error) {
	ctx, span := r.startSpan(ctx, "Redis.Entries")
	defer span.End()

	var out []entity.Record
	iter := r.client.Scan(ctx, 0, r.pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		if !strings.HasPrefix(iter.Val(), r.prefix) {
			continue
		}
		rec, err := r.load(ctx, r.client, iter.Val())
		if err != nil {
			return nil, recordErr(span, err)
		}
		if rec != nil {
			out = append(out, *rec)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, recordErr(span, err)
	}

	return out, nil
}

func (r *Redis) Mutate(ctx context.Context, id entity.Identity, fn func(rec *entity.Record) entity.Mutation) error {
	ctx, span := r.startSpan(ctx, "Redis.Mutate")
	defer span.End()

	key := r.key(id)
	txf := func(tx *redis.Tx) error {
		cur, err := r.load(ctx, tx, key)
		if err != nil {
			return err
		}

		switch fn(cur) {
		case entity.MutationSave:
			if cur == nil {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.HSet(ctx, key, toRedisRecord(*cur))
				p.PExpireAt(ctx, key, cur.ExpiresAt.Add(r.grace))
				return nil
			})
		case entity.MutationDelete:
			_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.Del(ctx, key)
				return nil
			})
		case entity.MutationKeep:
		}
		return err
	}

	b := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(2*time.Millisecond))
	b = retry.WithJitterPercent(50, b)
	b = retry.WithCappedDuration(100*time.Millisecond, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			return retry.RetryableError(err)
		}
		return err
	})
	return recordErr(span, err)
}

type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func (r *Redis) load(ctx context.Context, c hashReader, key string) (*entity.Record, error) {
	res := c.HGetAll(ctx, key)
	fields, err := res.Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	var rr redisRecord
	if err := res.Scan(&rr); err != nil {
		return nil, fmt.Errorf("redis decode %s: %w", key, err)
	}
	if rr.Email == "" {
		return nil, nil
	}

	rec := rr.entity()
	return &rec, nil
}

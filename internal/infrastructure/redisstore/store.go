// Package redisstore implementa el almacén de documentos sobre Redis:
// cada documento es un HASH y cada colección un SET con sus IDs.
//
//	<prefix>:doc:<collection>:<id>  HASH  campos del documento
//	<prefix>:idx:<collection>       SET   IDs de la colección
//
// Las transacciones son optimistas (WATCH/MULTI/EXEC) y se reintentan ante conflicto.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.TransactionalStore = (*Store)(nil)

// DefaultTxRetries intentos de una transacción abortada por conflicto de WATCH.
const DefaultTxRetries = 40

// Espera entre intentos: exponencial desde txBackoffInitial, acotada por
// txBackoffMax, con jitter de ±50%.
const (
	txBackoffInitial = 2 * time.Millisecond
	txBackoffMax     = 40 * time.Millisecond
)

// Options configuración del almacén.
type Options struct {
	KeyPrefix string // por defecto "inv"
	TxRetries int
}

// Store almacén de documentos sobre Redis.
type Store struct {
	client    *redis.Client
	prefix    string
	txRetries int
}

// NewStore construye el almacén con un cliente ya configurado.
func NewStore(client *redis.Client, opts Options) *Store {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "inv"
	}
	if opts.TxRetries <= 0 {
		opts.TxRetries = DefaultTxRetries
	}
	return &Store{client: client, prefix: opts.KeyPrefix, txRetries: opts.TxRetries}
}

// Ping verifica la conexión con Redis.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func (s *Store) docKey(collection, id string) string {
	return s.prefix + ":doc:" + collection + ":" + id
}

func (s *Store) idxKey(collection string) string {
	return s.prefix + ":idx:" + collection
}

// Get obtiene un documento.
func (s *Store) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	return getDoc(ctx, s.client, s.docKey(collection, id), id)
}

// List devuelve los documentos de la colección ordenados por ID.
func (s *Store) List(ctx context.Context, collection string) ([]*repository.Document, error) {
	return listDocs(ctx, s.client, s, collection)
}

// Create crea el documento si no existe (WATCH + EXISTS + MULTI).
func (s *Store) Create(ctx context.Context, collection, id string, fields repository.Fields) error {
	key := s.docKey(collection, id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return storeErr("exists", err)
		}
		if n > 0 {
			return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrDuplicate)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, encodeFields(fields))
			pipe.SAdd(ctx, s.idxKey(collection), id)
			return nil
		})
		return err
	}, key)
}

// Update mezcla campos en un documento existente.
func (s *Store) Update(ctx context.Context, collection, id string, fields repository.Fields) error {
	key := s.docKey(collection, id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return storeErr("exists", err)
		}
		if n == 0 {
			return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, encodeFields(fields))
			return nil
		})
		return err
	}, key)
}

// Delete elimina el documento y su entrada en el índice.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.docKey(collection, id))
		pipe.SRem(ctx, s.idxKey(collection), id)
		return nil
	})
	if err != nil {
		return storeErr("del", err)
	}
	return nil
}

// Increment HINCRBY atómico; crea el documento si no existía.
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, s.docKey(collection, id), field, delta)
		pipe.SAdd(ctx, s.idxKey(collection), id)
		return nil
	})
	if err != nil {
		return 0, storeErr("hincrby", err)
	}
	return incr.Val(), nil
}

// RunInTx ejecuta fn en una transacción optimista. Las lecturas hechas a través
// del almacén de la tx quedan bajo WATCH; si otro cliente las modifica antes del
// EXEC la transacción se descarta y fn se vuelve a ejecutar tras una espera
// exponencial con jitter.
func (s *Store) RunInTx(ctx context.Context, fn func(tx repository.DocumentStore) error) error {
	return s.retry(ctx, "tx", func() error {
		var fnErr error
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			ts := newTxStore(s, rtx)
			if fnErr = fn(ts); fnErr != nil {
				return fnErr
			}
			return ts.commit(ctx)
		})
		if fnErr != nil {
			return backoff.Permanent(err)
		}
		return err
	})
}

// watch ejecuta una transacción corta sobre claves conocidas, con reintentos.
func (s *Store) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	return s.retry(ctx, "exec", func() error {
		return s.client.Watch(ctx, fn, keys...)
	})
}

// retry reintenta op mientras EXEC aborte por conflicto de WATCH, hasta
// txRetries intentos. Cualquier otro error corta los reintentos.
func (s *Store) retry(ctx context.Context, op string, attempt func() error) error {
	err := backoff.Retry(func() error {
		err := attempt()
		switch {
		case err == nil, errors.Is(err, redis.TxFailedErr):
			return err
		case isDomainErr(err):
			return backoff.Permanent(err)
		default:
			return backoff.Permanent(storeErr(op, err))
		}
	}, s.backOff(ctx))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("%w: redis %s abortada tras %d intentos", domain.ErrConflict, op, s.txRetries)
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return storeErr(op, err)
	default:
		return err
	}
}

func (s *Store) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = txBackoffInitial
	b.MaxInterval = txBackoffMax
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.txRetries-1)), ctx)
}

// reader subconjunto de comandos usado por las lecturas (cliente o tx).
type reader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

func getDoc(ctx context.Context, r reader, key, id string) (*repository.Document, error) {
	m, err := r.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, storeErr("hgetall", err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}
	return &repository.Document{ID: id, Fields: decodeFields(m)}, nil
}

func listDocs(ctx context.Context, r reader, s *Store, collection string) ([]*repository.Document, error) {
	ids, err := r.SMembers(ctx, s.idxKey(collection)).Result()
	if err != nil {
		return nil, storeErr("smembers", err)
	}
	sort.Strings(ids)
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.docKey(collection, id))
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("pipeline hgetall", err)
	}
	docs := make([]*repository.Document, 0, len(ids))
	for i, id := range ids {
		m := cmds[i].Val()
		if len(m) == 0 {
			// índice desfasado: el documento ya no existe
			continue
		}
		docs = append(docs, &repository.Document{ID: id, Fields: decodeFields(m)})
	}
	return docs, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: redis %s: %v", domain.ErrStoreUnavailable, op, err)
}

func isDomainErr(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrDuplicate) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrStoreUnavailable)
}

// encodeFields convierte los valores a string (HSET solo guarda strings).
func encodeFields(fields repository.Fields) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

func decodeFields(m map[string]string) repository.Fields {
	f := make(repository.Fields, len(m))
	for k, v := range m {
		f[k] = v
	}
	return f
}

package redisstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// txStore almacén ligado a una transacción WATCH/MULTI.
// Las lecturas ponen la clave bajo WATCH; las escrituras se encolan y se
// ejecutan juntas en commit. Lo escrito es visible para lecturas posteriores
// de la misma transacción.
type txStore struct {
	s       *Store
	tx      *redis.Tx
	ops     []func(ctx context.Context, pipe redis.Pipeliner)
	watched map[string]bool
	pending map[string]repository.Fields // clave → estado proyectado
	deleted map[string]bool
}

func newTxStore(s *Store, tx *redis.Tx) *txStore {
	return &txStore{
		s:       s,
		tx:      tx,
		watched: make(map[string]bool),
		pending: make(map[string]repository.Fields),
		deleted: make(map[string]bool),
	}
}

func (t *txStore) watchKey(ctx context.Context, key string) error {
	if t.watched[key] {
		return nil
	}
	if err := t.tx.Watch(ctx, key).Err(); err != nil {
		return storeErr("watch", err)
	}
	t.watched[key] = true
	return nil
}

// load devuelve el estado actual de la clave visto por la transacción (nil si no existe).
func (t *txStore) load(ctx context.Context, key string) (repository.Fields, error) {
	if t.deleted[key] {
		return nil, nil
	}
	if f, ok := t.pending[key]; ok {
		return f, nil
	}
	if err := t.watchKey(ctx, key); err != nil {
		return nil, err
	}
	m, err := t.tx.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, storeErr("hgetall", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	f := decodeFields(m)
	t.pending[key] = f
	return f, nil
}

func (t *txStore) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	f, err := t.load(ctx, t.s.docKey(collection, id))
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}
	return &repository.Document{ID: id, Fields: copyFields(f)}, nil
}

// List no observa las escrituras pendientes de la transacción.
func (t *txStore) List(ctx context.Context, collection string) ([]*repository.Document, error) {
	return listDocs(ctx, t.tx, t.s, collection)
}

func (t *txStore) Create(ctx context.Context, collection, id string, fields repository.Fields) error {
	key := t.s.docKey(collection, id)
	cur, err := t.load(ctx, key)
	if err != nil {
		return err
	}
	if cur != nil {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrDuplicate)
	}
	enc := encodeFields(fields)
	idx := t.s.idxKey(collection)
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.HSet(ctx, key, enc)
		pipe.SAdd(ctx, idx, id)
	})
	delete(t.deleted, key)
	t.pending[key] = stringFields(enc)
	return nil
}

func (t *txStore) Update(ctx context.Context, collection, id string, fields repository.Fields) error {
	key := t.s.docKey(collection, id)
	cur, err := t.load(ctx, key)
	if err != nil {
		return err
	}
	if cur == nil {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}
	enc := encodeFields(fields)
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.HSet(ctx, key, enc)
	})
	for k, v := range enc {
		cur[k] = v
	}
	return nil
}

// Delete deja la clave bajo WATCH: dos transacciones que borran el mismo
// documento no pueden confirmar ambas.
func (t *txStore) Delete(ctx context.Context, collection, id string) error {
	key := t.s.docKey(collection, id)
	if _, err := t.load(ctx, key); err != nil {
		return err
	}
	idx := t.s.idxKey(collection)
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, idx, id)
	})
	delete(t.pending, key)
	t.deleted[key] = true
	return nil
}

// Increment encola un HINCRBY y devuelve el valor proyectado (lectura bajo WATCH + delta).
// Si la clave cambia antes del EXEC la transacción completa se reintenta.
func (t *txStore) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	key := t.s.docKey(collection, id)
	cur, err := t.load(ctx, key)
	if err != nil {
		return 0, err
	}
	var base int64
	if cur != nil {
		if raw, ok := cur[field]; ok {
			base, err = strconv.ParseInt(fmt.Sprint(raw), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: campo %s de %s no es entero", domain.ErrInvalidInput, field, id)
			}
		}
	} else {
		cur = repository.Fields{}
		delete(t.deleted, key)
		t.pending[key] = cur
	}
	idx := t.s.idxKey(collection)
	t.ops = append(t.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.HIncrBy(ctx, key, field, delta)
		pipe.SAdd(ctx, idx, id)
	})
	next := base + delta
	cur[field] = strconv.FormatInt(next, 10)
	return next, nil
}

func (t *txStore) commit(ctx context.Context) error {
	if len(t.ops) == 0 {
		return nil
	}
	_, err := t.tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range t.ops {
			op(ctx, pipe)
		}
		return nil
	})
	if err == nil || err == redis.TxFailedErr {
		return err
	}
	return storeErr("exec", err)
}

func copyFields(f repository.Fields) repository.Fields {
	out := make(repository.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func stringFields(m map[string]interface{}) repository.Fields {
	out := make(repository.Fields, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

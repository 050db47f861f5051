package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.TransactionalStore = (*Store)(nil)
	_ repository.DocumentStore      = (*txStore)(nil)
)

// Store almacén de documentos sobre una tabla JSONB (collection, id, fields).
type Store struct {
	pool *pgxpool.Pool
	docs
}

// NewStore construye el almacén sobre el pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, docs: docs{q: pool}}
}

// Ping verifica la conexión.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// RunInTx inicia una transacción, ejecuta fn con un almacén atado a la tx y hace Commit o Rollback.
// Dentro de la tx, Get bloquea la fila leída (SELECT ... FOR UPDATE).
func (s *Store) RunInTx(ctx context.Context, fn func(tx repository.DocumentStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txStore{docs: docs{q: tx, forUpdate: true}}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

// txStore almacén atado a una transacción.
type txStore struct {
	docs
}

// docs operaciones sobre la tabla, comunes a pool y tx.
type docs struct {
	q         Querier
	forUpdate bool
}

func (d docs) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	query, args, err := getQuery(collection, id, d.forUpdate).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}
	var raw []byte
	if err := d.q.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
		}
		return nil, storeErr("get", err)
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, err
	}
	return &repository.Document{ID: id, Fields: fields}, nil
}

func (d docs) List(ctx context.Context, collection string) ([]*repository.Document, error) {
	query, args, err := listQuery(collection).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := d.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list", err)
	}
	defer rows.Close()

	var list []*repository.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, storeErr("scan", err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		list = append(list, &repository.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", err)
	}
	return list, nil
}

func (d docs) Create(ctx context.Context, collection, id string, fields repository.Fields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: campos de %s/%s: %v", domain.ErrInvalidInput, collection, id, err)
	}
	query, args, err := insertQuery(collection, id, data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := d.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrDuplicate)
		}
		return storeErr("insert", err)
	}
	return nil
}

func (d docs) Update(ctx context.Context, collection, id string, fields repository.Fields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: campos de %s/%s: %v", domain.ErrInvalidInput, collection, id, err)
	}
	query, args, err := updateQuery(collection, id, data).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := d.q.Exec(ctx, query, args...)
	if err != nil {
		return storeErr("update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}
	return nil
}

func (d docs) Delete(ctx context.Context, collection, id string) error {
	query, args, err := deleteQuery(collection, id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := d.q.Exec(ctx, query, args...); err != nil {
		return storeErr("delete", err)
	}
	return nil
}

// Increment suma delta en una sola sentencia; el valor devuelto es el confirmado por la fila.
func (d docs) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	query, args, err := incrementQuery(collection, id, field, delta).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build increment: %w", err)
	}
	var v decimal.Decimal
	if err := d.q.QueryRow(ctx, query, args...).Scan(&v); err != nil {
		return 0, storeErr("increment", err)
	}
	return v.IntPart(), nil
}

// decodeFields conserva los números como json.Number (sin pérdida en enteros grandes).
func decodeFields(raw []byte) (repository.Fields, error) {
	fields := repository.Fields{}
	if len(raw) == 0 {
		return fields, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, storeErr("decode fields", err)
	}
	return fields, nil
}

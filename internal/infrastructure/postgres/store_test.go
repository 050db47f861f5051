package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Requiere una base real: LEDGER_TEST_DATABASE_URL=postgres://...
func nuevoStore(t *testing.T) *postgres.Store {
	t.Helper()
	url := os.Getenv("LEDGER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("LEDGER_TEST_DATABASE_URL no definido")
	}
	require.NoError(t, postgres.Migrate(url, logger.Nop()))
	pool, err := postgres.NewPool(context.Background(), config.DBConfig{DatabaseURL: url, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = pool.Exec(context.Background(), "DELETE FROM documents")
	require.NoError(t, err)
	return postgres.NewStore(pool)
}

func TestStore_CrudSobreJSONB(t *testing.T) {
	s := nuevoStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, repository.CollectionProducts, "prod001", repository.Fields{"name": "Arroz", "stock": int64(50)}))
	assert.ErrorIs(t, s.Create(ctx, repository.CollectionProducts, "prod001", repository.Fields{}), domain.ErrDuplicate)

	require.NoError(t, s.Update(ctx, repository.CollectionProducts, "prod001", repository.Fields{"name": "Arroz blanco"}))
	doc, err := s.Get(ctx, repository.CollectionProducts, "prod001")
	require.NoError(t, err)
	assert.Equal(t, "Arroz blanco", doc.Fields["name"])
	assert.NotNil(t, doc.Fields["stock"], "update mezcla sin borrar campos")

	assert.ErrorIs(t, s.Update(ctx, repository.CollectionProducts, "prod404", repository.Fields{"name": "X"}), domain.ErrNotFound)

	require.NoError(t, s.Delete(ctx, repository.CollectionProducts, "prod001"))
	_, err = s.Get(ctx, repository.CollectionProducts, "prod001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_IncrementConcurrente(t *testing.T) {
	s := nuevoStore(t)
	ctx := context.Background()

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Increment(ctx, repository.CollectionCounters, "movements", "sequence", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := s.Increment(ctx, repository.CollectionCounters, "movements", "sequence", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(n), v)
}

func TestStore_RunInTxRollback(t *testing.T) {
	s := nuevoStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, repository.CollectionProducts, "prod001", repository.Fields{"stock": int64(10)}))

	err := s.RunInTx(ctx, func(tx repository.DocumentStore) error {
		if _, err := tx.Get(ctx, repository.CollectionProducts, "prod001"); err != nil {
			return err
		}
		if _, err := tx.Increment(ctx, repository.CollectionProducts, "prod001", "stock", -4); err != nil {
			return err
		}
		return domain.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	v, err := s.Increment(ctx, repository.CollectionProducts, "prod001", "stock", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v, "rollback descarta el decremento")
}

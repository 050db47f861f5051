package redisstore_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/redisstore"
)

func nuevoStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.NewStore(client, redisstore.Options{KeyPrefix: "test"}), mr
}

func TestStore_CrearYObtener(t *testing.T) {
	s, _ := nuevoStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, repository.CollectionProducts, "prod001", repository.Fields{
		"name": "Arroz", "stock": int64(50), "price": "12.50",
	}))

	doc, err := s.Get(ctx, repository.CollectionProducts, "prod001")
	require.NoError(t, err)
	assert.Equal(t, "prod001", doc.ID)
	assert.Equal(t, "Arroz", doc.Fields["name"])
	assert.Equal(t, "50", doc.Fields["stock"], "los valores se guardan como string")
}

func TestStore_CrearDuplicado(t *testing.T) {
	s, _ := nuevoStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, repository.CollectionCategories, "CAT001", repository.Fields{"name": "A"}))

	err := s.Create(ctx, repository.CollectionCategories, "CAT001", repository.Fields{"name": "B"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStore_GetInexistente(t *testing.T) {
	s, _ := nuevoStore(t)
	_, err := s.Get(context.Background(), repository.CollectionProducts, "prod999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpdateMezclaCampos(t *testing.T) {
	s, _ := nuevoStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, repository.CollectionSuppliers, "prov001", repository.Fields{"name": "Viejo", "createdAt": "x"}))

	require.NoError(t, s.Update(ctx, repository.CollectionSuppliers, "prov001", repository.Fields{"name": "Nuevo"}))

	doc, err := s.Get(ctx, repository.CollectionSuppliers, "prov001")
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", doc.Fields["name"])
	assert.Equal(t, "x", doc.Fields["createdAt"], "campos no enviados se conservan")

	err = s.Update(ctx, repository.CollectionSuppliers, "prov404", repository.Fields{"name": "N"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListOrdenadoYDeleteIdempotente(t *testing.T) {
	s, _ := nuevoStore(t)
	ctx := context.Background()
	for _, id := range []string{"CAT003", "CAT001", "CAT002"} {
		require.NoError(t, s.Create(ctx, repository.CollectionCategories, id, repository.Fields{"name": id}))
	}
	require.NoError(t, s.Delete(ctx, repository.CollectionCategories, "CAT002"))
	require.NoError(t, s.Delete(ctx, repository.CollectionCategories, "CAT002"), "borrar dos veces no falla")

	docs, err := s.List(ctx, repository.CollectionCategories)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "CAT001", docs[0].ID)
	assert.Equal(t, "CAT003", docs[1].ID)
}

func TestStore_IncrementConcurrenteSinDuplicados(t *testing.T) {
	s, _ := nuevoStore(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	vals := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Increment(ctx, repository.CollectionCounters, "movements", "sequence", 1)
			assert.NoError(t, err)
			vals <- v
		}()
	}
	wg.Wait()
	close(vals)

	vistos := make(map[int64]bool)
	for v := range vals {
		assert.False(t, vistos[v], "valor repetido %d", v)
		vistos[v] = true
	}
	assert.Len(t, vistos, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, vistos[i], "falta el valor %d", i)
	}
}

func TestStore_RunInTx_CommitAtomico(t *testing.T) {
	s, _ := nuevoStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, repository.CollectionProducts, "prod001", repository.Fields{"stock": int64(10)}))

	err := s.RunInTx(ctx, func(tx repository.DocumentStore) error {
		if _, err := tx.Get(ctx, repository.CollectionProducts, "prod001"); err != nil {
			return err
		}
		if err := tx.Create(ctx, repository.CollectionMovements, "mov001", repository.Fields{"quantity": int64(3)}); err != nil {
			return err
		}
		v, err := tx.Increment(ctx, repository.CollectionProducts, "prod001", "stock", -3)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(7), v, "valor proyectado dentro de la tx")
		doc, err := tx.Get(ctx, repository.CollectionMovements, "mov001")
		require.NoError(t, err, "lo escrito en la tx es visible en la misma tx")
		assert.Equal(t, "3", doc.Fields["quantity"])
		return nil
	})
	require.NoError(t, err)

	doc, err := s.Get(ctx, repository.CollectionProducts, "prod001")
	require.NoError(t, err)
	assert.Equal(t, "7", doc.Fields["stock"])
	_, err = s.Get(ctx, repository.CollectionMovements, "mov001")
	assert.NoError(t, err)
}

func TestStore_RunInTx_ErrorDescartaEscrituras(t *testing.T) {
	s, _ := nuevoStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, repository.CollectionProducts, "prod001", repository.Fields{"stock": int64(10)}))
	errNegocio := errors.New("rechazado")

	err := s.RunInTx(ctx, func(tx repository.DocumentStore) error {
		if err := tx.Create(ctx, repository.CollectionMovements, "mov001", repository.Fields{"quantity": int64(3)}); err != nil {
			return err
		}
		if _, err := tx.Increment(ctx, repository.CollectionProducts, "prod001", "stock", -3); err != nil {
			return err
		}
		return errNegocio
	})
	assert.ErrorIs(t, err, errNegocio)

	doc, err := s.Get(ctx, repository.CollectionProducts, "prod001")
	require.NoError(t, err)
	assert.Equal(t, "10", doc.Fields["stock"], "nada se aplica si fn falla")
	_, err = s.Get(ctx, repository.CollectionMovements, "mov001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_RunInTx_ReintentaAnteConflicto(t *testing.T) {
	s, mr := nuevoStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, repository.CollectionProducts, "prod001", repository.Fields{"stock": int64(10)}))
	otro := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = otro.Close() })

	intentos := 0
	err := s.RunInTx(ctx, func(tx repository.DocumentStore) error {
		intentos++
		if _, err := tx.Get(ctx, repository.CollectionProducts, "prod001"); err != nil {
			return err
		}
		if intentos == 1 {
			// otro cliente modifica la clave observada
			require.NoError(t, otro.HSet(ctx, "test:doc:products:prod001", "stock", "4").Err())
		}
		_, err := tx.Increment(ctx, repository.CollectionProducts, "prod001", "stock", -2)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, intentos)

	doc, err := s.Get(ctx, repository.CollectionProducts, "prod001")
	require.NoError(t, err)
	assert.Equal(t, "2", doc.Fields["stock"])
}

func TestStore_AlmacenCaido(t *testing.T) {
	s, mr := nuevoStore(t)
	mr.Close()

	_, err := s.Get(context.Background(), repository.CollectionProducts, "prod001")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.True(t, domain.Retryable(err))

	err = s.RunInTx(context.Background(), func(tx repository.DocumentStore) error {
		_, err := tx.Get(context.Background(), repository.CollectionProducts, "prod001")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

// ── Conflictos de WATCH ──

func TestStore_RunInTx_DeleteObservaLaClave(t *testing.T) {
	s, mr := nuevoStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, repository.CollectionMovements, "mov001", repository.Fields{"quantity": int64(3)}))
	otro := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = otro.Close() })

	intentos := 0
	err := s.RunInTx(ctx, func(tx repository.DocumentStore) error {
		intentos++
		if _, err := tx.Get(ctx, repository.CollectionMovements, "mov001"); err != nil {
			// ya borrado por otro cliente: nada que registrar
			return nil
		}
		if err := tx.Delete(ctx, repository.CollectionMovements, "mov001"); err != nil {
			return err
		}
		if intentos == 1 {
			// borrado concurrente de la misma clave antes del EXEC
			require.NoError(t, otro.Del(ctx, "test:doc:movements:mov001").Err())
		}
		return tx.Create(ctx, repository.CollectionJournal, fmt.Sprintf("j%d", intentos), repository.Fields{"kind": "orphan"})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, intentos, "el primer EXEC se descarta")

	journal, err := s.List(ctx, repository.CollectionJournal)
	require.NoError(t, err)
	assert.Empty(t, journal, "solo un borrado confirma; el segundo intento no registra nada")
}

func TestStore_RunInTx_DeleteSinGetTambienObserva(t *testing.T) {
	s, mr := nuevoStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, repository.CollectionMovements, "mov001", repository.Fields{"quantity": int64(3)}))
	otro := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = otro.Close() })

	intentos := 0
	err := s.RunInTx(ctx, func(tx repository.DocumentStore) error {
		intentos++
		if err := tx.Delete(ctx, repository.CollectionMovements, "mov001"); err != nil {
			return err
		}
		if intentos == 1 {
			require.NoError(t, otro.HSet(ctx, "test:doc:movements:mov001", "quantity", "9").Err())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, intentos)

	_, err = s.Get(ctx, repository.CollectionMovements, "mov001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_RunInTx_ConflictoPersistenteEsConflict(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := redisstore.NewStore(client, redisstore.Options{KeyPrefix: "test", TxRetries: 3})
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, repository.CollectionProducts, "prod001", repository.Fields{"stock": int64(10)}))
	otro := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = otro.Close() })

	intentos := 0
	err := s.RunInTx(ctx, func(tx repository.DocumentStore) error {
		intentos++
		if _, err := tx.Get(ctx, repository.CollectionProducts, "prod001"); err != nil {
			return err
		}
		require.NoError(t, otro.HIncrBy(ctx, "test:doc:products:prod001", "stock", 1).Err())
		_, err := tx.Increment(ctx, repository.CollectionProducts, "prod001", "stock", -1)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, 3, intentos)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, domain.CodeConflict, domain.Code(err))
	assert.True(t, domain.Retryable(err))
}

func TestStore_RunInTx_ContextoCanceladoCortaLosReintentos(t *testing.T) {
	s, mr := nuevoStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Create(ctx, repository.CollectionProducts, "prod001", repository.Fields{"stock": int64(10)}))
	otro := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = otro.Close() })

	intentos := 0
	err := s.RunInTx(ctx, func(tx repository.DocumentStore) error {
		intentos++
		if _, err := tx.Get(ctx, repository.CollectionProducts, "prod001"); err != nil {
			return err
		}
		require.NoError(t, otro.HIncrBy(context.Background(), "test:doc:products:prod001", "stock", 1).Err())
		cancel()
		_, err := tx.Increment(ctx, repository.CollectionProducts, "prod001", "stock", -1)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, 1, intentos, "sin reintentos tras cancelar")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

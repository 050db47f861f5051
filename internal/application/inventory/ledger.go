package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// LedgerOptions comportamiento configurable del ledger.
type LedgerOptions struct {
	// StrictReversal rechaza eliminar un movimiento cuya reversión dejaría el stock en negativo.
	// En false se aplica la reversión espejo aunque el stock quede negativo.
	StrictReversal bool
}

// MovementLedger registra y corrige movimientos manteniendo el stock cacheado del producto
// coherente con el libro de movimientos.
type MovementLedger struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	journalRepo  repository.JournalRepository
	ids          IDAllocator
	events       EventPublisher
	log          *logger.Logger
	strict       bool
	now          func() time.Time
}

// NewMovementLedger construye el ledger. ids debe ser la estrategia por contador.
func NewMovementLedger(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	journalRepo repository.JournalRepository,
	ids IDAllocator,
	events EventPublisher,
	log *logger.Logger,
	opts LedgerOptions,
) *MovementLedger {
	if events == nil {
		events = NoopPublisher{}
	}
	return &MovementLedger{
		txRunner:     txRunner,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		journalRepo:  journalRepo,
		ids:          ids,
		events:       events,
		log:          log,
		strict:       opts.StrictReversal,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (l *MovementLedger) WithClock(now func() time.Time) *MovementLedger {
	l.now = now
	return l
}

// RecordMovementInput entrada para registrar un movimiento.
type RecordMovementInput struct {
	ProductID string
	Type      string // entry/exit (acepta entrada/salida)
	Quantity  int64
	Note      string
	CreatedBy string
}

// RecordMovementResult movimiento creado y stock resultante.
type RecordMovementResult struct {
	Movement *entity.Movement
	Stock    int64
}

// RecordMovement valida, verifica stock y dentro de una transacción crea el movimiento
// y ajusta el stock con incremento atómico. El movimiento se escribe antes que el stock.
func (l *MovementLedger) RecordMovement(ctx context.Context, in RecordMovementInput) (*RecordMovementResult, error) {
	mt, ok := entity.ParseMovementType(in.Type)
	if !ok {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}

	// Verificación temprana; la autoritativa se repite dentro de la transacción.
	p, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	if mt == entity.MovementTypeExit && !inventory.CanExit(p.Stock, in.Quantity) {
		return nil, insufficient(productID, p.Stock, in.Quantity)
	}

	id, err := l.ids.Allocate(ctx, entity.EntityMovement)
	if err != nil {
		return nil, err
	}
	mov := &entity.Movement{
		ID:        id,
		ProductID: productID,
		Type:      mt,
		Quantity:  in.Quantity,
		Note:      strings.TrimSpace(in.Note),
		Timestamp: l.now().UTC(),
		CreatedBy: in.CreatedBy,
	}

	var stock int64
	err = l.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository, _ repository.JournalRepository) error {
		cur, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if cur == nil {
			return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
		}
		if mt == entity.MovementTypeExit && !inventory.CanExit(cur.Stock, in.Quantity) {
			return insufficient(productID, cur.Stock, in.Quantity)
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		stock, err = productRepo.AdjustStock(ctx, productID, inventory.StockDelta(mt, in.Quantity))
		if err != nil {
			return err
		}
		if stock < 0 {
			return insufficient(productID, stock-inventory.StockDelta(mt, in.Quantity), in.Quantity)
		}
		return nil
	})
	if err != nil {
		l.logFailure(err, "registrar movimiento", productID, mov.ID)
		return nil, err
	}

	l.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", productID).
		Str("type", string(mt)).
		Int64("quantity", in.Quantity).
		Int64("stock", stock).
		Msg("movimiento registrado")
	l.publish(ctx, Event{
		Type:          EventMovementRecorded,
		MovementID:    mov.ID,
		ProductID:     productID,
		MovementType:  mt,
		Quantity:      mov.Quantity,
		Stock:         stock,
		StockAdjusted: true,
	})
	return &RecordMovementResult{Movement: mov, Stock: stock}, nil
}

// DeleteMovementResult resultado de eliminar un movimiento.
// StockAdjusted es false en la ruta degradada (producto inexistente).
type DeleteMovementResult struct {
	Movement      *entity.Movement
	Stock         int64
	StockAdjusted bool
	JournalID     string
}

// DeleteMovement elimina un movimiento y revierte su efecto sobre el stock en la misma transacción.
// Si el producto ya no existe, el movimiento se elimina igualmente, se registra un asiento
// en el diario y se devuelve el resultado junto con un error domain.ErrNotFound.
func (l *MovementLedger) DeleteMovement(ctx context.Context, movementID string) (*DeleteMovementResult, error) {
	m, err := l.movementRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("movimiento %s: %w", movementID, domain.ErrNotFound)
	}
	p, err := l.productRepo.GetByID(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	if p != nil && l.strict && !inventory.CanReverse(p.Stock, m.Type, m.Quantity) {
		return nil, reversalRejected(m, p.Stock)
	}

	var (
		stock  int64
		orphan *entity.JournalEntry
	)
	err = l.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository, journalRepo repository.JournalRepository) error {
		orphan = nil
		cur, err := movRepo.GetByID(ctx, movementID)
		if err != nil {
			return err
		}
		if cur == nil {
			return fmt.Errorf("movimiento %s: %w", movementID, domain.ErrNotFound)
		}
		prod, err := productRepo.GetByID(ctx, cur.ProductID)
		if err != nil {
			return err
		}
		if prod == nil {
			// el producto pudo borrarse después de la lectura previa
			orphan = l.orphanEntry(cur)
			if err := movRepo.Delete(ctx, movementID); err != nil {
				return err
			}
			return journalRepo.Create(ctx, orphan)
		}
		if l.strict && !inventory.CanReverse(prod.Stock, cur.Type, cur.Quantity) {
			return reversalRejected(cur, prod.Stock)
		}
		if err := movRepo.Delete(ctx, movementID); err != nil {
			return err
		}
		stock, err = productRepo.AdjustStock(ctx, cur.ProductID, inventory.ReversalDelta(cur.Type, cur.Quantity))
		return err
	})
	if err != nil {
		l.logFailure(err, "eliminar movimiento", m.ProductID, movementID)
		return nil, err
	}
	if orphan != nil {
		return l.orphanDeleted(ctx, m, orphan)
	}

	ev := l.log.Info()
	if stock < 0 {
		ev = l.log.Warn()
	}
	ev.Str("movement_id", movementID).
		Str("product_id", m.ProductID).
		Str("type", string(m.Type)).
		Int64("quantity", m.Quantity).
		Int64("stock", stock).
		Msg("movimiento eliminado y stock revertido")
	l.publish(ctx, Event{
		Type:          EventMovementDeleted,
		MovementID:    movementID,
		ProductID:     m.ProductID,
		MovementType:  m.Type,
		Quantity:      m.Quantity,
		Stock:         stock,
		StockAdjusted: true,
	})
	return &DeleteMovementResult{Movement: m, Stock: stock, StockAdjusted: true}, nil
}

// orphanEntry asiento de diario para un movimiento eliminado sin producto.
func (l *MovementLedger) orphanEntry(m *entity.Movement) *entity.JournalEntry {
	return &entity.JournalEntry{
		ID:         uuid.NewString(),
		Kind:       entity.JournalKindOrphanReversal,
		MovementID: m.ID,
		ProductID:  m.ProductID,
		Type:       m.Type,
		Quantity:   m.Quantity,
		Note:       "movimiento eliminado sin producto; reversión de stock no aplicada",
		Timestamp:  l.now().UTC(),
	}
}

// orphanDeleted ruta degradada: el stock no se tocó; se devuelve el resultado junto con NotFound.
func (l *MovementLedger) orphanDeleted(ctx context.Context, m *entity.Movement, entry *entity.JournalEntry) (*DeleteMovementResult, error) {
	l.log.Warn().
		Str("movement_id", m.ID).
		Str("product_id", m.ProductID).
		Str("journal_id", entry.ID).
		Msg("movimiento eliminado; producto inexistente, stock sin ajustar")
	l.publish(ctx, Event{
		Type:         EventMovementDeleted,
		MovementID:   m.ID,
		ProductID:    m.ProductID,
		MovementType: m.Type,
		Quantity:     m.Quantity,
	})
	res := &DeleteMovementResult{Movement: m, StockAdjusted: false, JournalID: entry.ID}
	return res, fmt.Errorf("producto %s del movimiento %s: %w", m.ProductID, m.ID, domain.ErrNotFound)
}

// GetMovement obtiene un movimiento por ID.
func (l *MovementLedger) GetMovement(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := l.movementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("movimiento %s: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

// ListMovements lista el ledger, más reciente primero. productID vacío = todos.
func (l *MovementLedger) ListMovements(ctx context.Context, productID string) ([]*entity.Movement, error) {
	var (
		list []*entity.Movement
		err  error
	)
	if productID == "" {
		list, err = l.movementRepo.List(ctx)
	} else {
		list, err = l.movementRepo.ListByProduct(ctx, productID)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].ID > list[j].ID
		}
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

// ReconcileResult comparación entre el stock cacheado y el re-proyectado desde el ledger.
type ReconcileResult struct {
	ProductID string
	Cached    int64
	Replayed  int64
	Drift     int64
	Corrected bool
}

// ReconcileStock re-proyecta el stock (initialStock + Σentradas − Σsalidas) y, si difiere
// del cacheado, lo sobrescribe y deja un asiento stock_drift en el diario.
func (l *MovementLedger) ReconcileStock(ctx context.Context, productID string) (*ReconcileResult, error) {
	var res *ReconcileResult
	err := l.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository, journalRepo repository.JournalRepository) error {
		p, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
		}
		movs, err := movRepo.ListByProduct(ctx, productID)
		if err != nil {
			return err
		}
		replayed := inventory.ReplayStock(productID, p.InitialStock, movs)
		res = &ReconcileResult{ProductID: productID, Cached: p.Stock, Replayed: replayed, Drift: replayed - p.Stock}
		if res.Drift == 0 {
			return nil
		}
		if replayed < 0 {
			return fmt.Errorf("%w: el ledger de %s proyecta stock %d", domain.ErrInsufficientStock, productID, replayed)
		}
		if err := productRepo.SetStock(ctx, productID, replayed); err != nil {
			return err
		}
		res.Corrected = true
		return journalRepo.Create(ctx, &entity.JournalEntry{
			ID:        uuid.NewString(),
			Kind:      entity.JournalKindStockDrift,
			ProductID: productID,
			Quantity:  res.Drift,
			Note:      fmt.Sprintf("stock cacheado %d corregido a %d", p.Stock, replayed),
			Timestamp: l.now().UTC(),
		})
	})
	if err != nil {
		l.logFailure(err, "reconciliar stock", productID, "")
		return nil, err
	}
	if res.Corrected {
		l.log.Warn().
			Str("product_id", productID).
			Int64("cached", res.Cached).
			Int64("stock", res.Replayed).
			Msg("stock corregido desde el ledger")
		l.publish(ctx, Event{Type: EventStockReconciled, ProductID: productID, Stock: res.Replayed, Quantity: res.Drift, StockAdjusted: true})
	}
	return res, nil
}

// ReconcileAll reconcilia todos los productos. Se detiene en la primera falla del almacén;
// los productos con ledger inconsistente se reportan sin corregir.
func (l *MovementLedger) ReconcileAll(ctx context.Context) ([]*ReconcileResult, error) {
	products, err := l.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*ReconcileResult, 0, len(products))
	for _, p := range products {
		res, err := l.ReconcileStock(ctx, p.ID)
		switch {
		case err == nil:
			out = append(out, res)
		case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrNotFound):
			continue
		default:
			return out, err
		}
	}
	return out, nil
}

// KardexLine fila del kardex con su saldo acumulado.
type KardexLine = inventory.KardexLine

// KardexReport movimientos del producto con saldo acumulado.
type KardexReport struct {
	Product      *entity.Product
	Lines        []KardexLine
	FinalBalance int64
}

// Kardex arma el kardex del producto a partir de su stock inicial.
func (l *MovementLedger) Kardex(ctx context.Context, productID string) (*KardexReport, error) {
	p, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	movs, err := l.movementRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	lines := inventory.BuildKardex(productID, p.InitialStock, movs)
	final := p.InitialStock
	if len(lines) > 0 {
		final = lines[len(lines)-1].Balance
	}
	return &KardexReport{Product: p, Lines: lines, FinalBalance: final}, nil
}

func (l *MovementLedger) publish(ctx context.Context, evt Event) {
	evt.ID = uuid.NewString()
	evt.OccurredAt = l.now().UTC()
	if err := l.events.Publish(ctx, evt); err != nil {
		l.log.Warn().Err(err).Str("event", evt.Type).Str("product_id", evt.ProductID).Msg("no se pudo publicar el evento del ledger")
	}
}

func (l *MovementLedger) logFailure(err error, op, productID, movementID string) {
	ev := l.log.Debug()
	if errors.Is(err, domain.ErrStoreUnavailable) {
		ev = l.log.Error()
	}
	ev.Err(err).Str("op", op).Str("product_id", productID).Str("movement_id", movementID).Msg("operación del ledger rechazada")
}

func insufficient(productID string, stock, quantity int64) error {
	return fmt.Errorf("%w: producto %s tiene %d, se solicitan %d", domain.ErrInsufficientStock, productID, stock, quantity)
}

func reversalRejected(m *entity.Movement, stock int64) error {
	return fmt.Errorf("%w: revertir %s dejaría el stock de %s en %d",
		domain.ErrInsufficientStock, m.ID, m.ProductID, stock+inventory.ReversalDelta(m.Type, m.Quantity))
}

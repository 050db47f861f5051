package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// KardexRenderer genera el documento del kardex (PDF).
type KardexRenderer interface {
	RenderKardex(report *inventory.KardexReport) ([]byte, error)
}

// ReconcileEnqueuer encola la reconciliación de stock. productID vacío = todos.
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, productID string) (taskID, queue string, err error)
}

// MovementHandler maneja el libro de movimientos, kardex y reconciliación.
type MovementHandler struct {
	ledger   *inventory.MovementLedger
	pdf      KardexRenderer
	enqueuer ReconcileEnqueuer
}

// NewMovementHandler construye el handler. pdf y enqueuer pueden ser nil (ruta responde 501).
func NewMovementHandler(ledger *inventory.MovementLedger, pdf KardexRenderer, enqueuer ReconcileEnqueuer) *MovementHandler {
	return &MovementHandler{ledger: ledger, pdf: pdf, enqueuer: enqueuer}
}

// Record godoc
// @Summary      Registrar movimiento
// @Description  type: entry|exit. Una salida mayor al stock devuelve 409 INSUFFICIENT_STOCK.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, type, quantity, note"
// @Success      201   {object}  dto.RecordMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.ledger.RecordMovement(c.UserContext(), inventory.RecordMovementInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Note:      in.Note,
		CreatedBy: GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordMovementResponse{
		Movement: toMovementResponse(res.Movement),
		Stock:    res.Stock,
	})
}

// List godoc
// @Summary      Listar movimientos (más reciente primero)
// @Tags         movements
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Success      200  {object}  dto.ListResponse[dto.MovementResponse]
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	list, err := h.ledger.ListMovements(c.UserContext(), c.Query("product_id"))
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return c.JSON(dto.ListResponse[dto.MovementResponse]{Items: items, Total: len(items)})
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.ledger.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponse(m))
}

// Delete godoc
// @Summary      Eliminar movimiento y revertir su efecto en el stock
// @Description  Si el producto ya no existe el movimiento se elimina igual y se responde 200 con warning.
// @Tags         movements
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.DeleteMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	res, err := h.ledger.DeleteMovement(c.UserContext(), c.Params("id"))
	if err != nil && res == nil {
		return writeError(c, err)
	}
	out := dto.DeleteMovementResponse{
		Movement:      toMovementResponse(res.Movement),
		Stock:         res.Stock,
		StockAdjusted: res.StockAdjusted,
		JournalID:     res.JournalID,
	}
	if err != nil && isNotFound(err) {
		out.Warning = fmt.Sprintf("producto %s no existe; stock no ajustado", res.Movement.ProductID)
	}
	return c.JSON(out)
}

// Kardex godoc
// @Summary      Kardex del producto (saldo acumulado desde el stock inicial)
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.KardexResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/kardex [get]
func (h *MovementHandler) Kardex(c *fiber.Ctx) error {
	k, err := h.ledger.Kardex(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	lines := make([]dto.KardexLineResponse, 0, len(k.Lines))
	for _, l := range k.Lines {
		lines = append(lines, dto.KardexLineResponse{
			MovementID: l.MovementID,
			Type:       string(l.Type),
			Quantity:   l.Quantity,
			Note:       l.Note,
			Timestamp:  l.Timestamp,
			Balance:    l.Balance,
		})
	}
	return c.JSON(dto.KardexResponse{
		ProductID:    k.Product.ID,
		ProductName:  k.Product.Name,
		InitialStock: k.Product.InitialStock,
		Stock:        k.Product.Stock,
		FinalBalance: k.FinalBalance,
		Lines:        lines,
	})
}

// KardexPDF godoc
// @Summary      Kardex del producto en PDF
// @Tags         products
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {file}  binary
// @Router       /api/products/{id}/kardex.pdf [get]
func (h *MovementHandler) KardexPDF(c *fiber.Ctx) error {
	if h.pdf == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_CONFIGURED", Message: "generador PDF no configurado"})
	}
	k, err := h.ledger.Kardex(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.pdf.RenderKardex(k)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="kardex-%s.pdf"`, k.Product.ID))
	return c.Send(doc)
}

// Reconcile godoc
// @Summary      Encolar reconciliación del stock desde el ledger
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      202  {object}  dto.ReconcileResponse
// @Router       /api/products/{id}/reconcile [post]
func (h *MovementHandler) Reconcile(c *fiber.Ctx) error {
	if h.enqueuer == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_CONFIGURED", Message: "cola de tareas no configurada"})
	}
	productID := c.Params("id")
	taskID, queue, err := h.enqueuer.EnqueueReconcile(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ReconcileResponse{TaskID: taskID, ProductID: productID, Queue: queue})
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      string(m.Type),
		Quantity:  m.Quantity,
		Note:      m.Note,
		Timestamp: m.Timestamp,
		CreatedBy: m.CreatedBy,
	}
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/manufactura-api/internal/application/dto"
	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

// BatchHandler recepción y consulta de lotes (protegido).
type BatchHandler struct {
	ledger *inventory.Ledger
	log    *logger.Logger
}

// NewBatchHandler construye el handler.
func NewBatchHandler(ledger *inventory.Ledger, log *logger.Logger) *BatchHandler {
	return &BatchHandler{ledger: ledger, log: log}
}

// Receive godoc
// @Summary      Registrar lote recibido
// @Description  Crea el lote y suma su cantidad al total agregado de la materia.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveBatchRequest  true  "material_id, code, quantity, unit"
// @Success      201   {object}  dto.BatchDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ValidationErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveBatchRequest
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	b, err := h.ledger.Receive(c.UserContext(), inventory.ReceiveRequest{
		MaterialID: in.MaterialID,
		Code:       in.Code,
		Quantity:   in.Quantity,
		Unit:       in.Unit,
		ReceivedAt: derefTime(in.ReceivedAt),
		Location:   in.Location,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBatchDTO(b))
}

// Get godoc
// @Summary      Obtener lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID del lote"
// @Success      200  {object}  dto.BatchDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	b, err := h.ledger.GetBatch(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toBatchDTO(b))
}

// ListByMaterial godoc
// @Summary      Lotes de una materia en orden FIFO
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id         path   int   true   "ID de la materia prima"
// @Param        exhausted  query  bool  false  "Incluir lotes agotados"
// @Success      200  {array}   dto.BatchDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/batches [get]
func (h *BatchHandler) ListByMaterial(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	list, err := h.ledger.ListBatches(c.UserContext(), id, c.QueryBool("exhausted", false))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.BatchDTO, 0, len(list))
	for _, b := range list {
		out = append(out, toBatchDTO(b))
	}
	return c.JSON(out)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/manufactura-api/internal/application/dto"
	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/domain/repository"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

// TraceabilityHandler historial de consumo por operación, lote o materia (protegido).
type TraceabilityHandler struct {
	ledger *inventory.Ledger
	log    *logger.Logger
}

// NewTraceabilityHandler construye el handler.
func NewTraceabilityHandler(ledger *inventory.Ledger, log *logger.Logger) *TraceabilityHandler {
	return &TraceabilityHandler{ledger: ledger, log: log}
}

// ByOperation godoc
// @Summary      Lotes consumidos por una operación
// @Tags         traceability
// @Security     Bearer
// @Produce      json
// @Param        kind    path   string  true   "outbound_note | production_order"
// @Param        id      path   int     true   "ID de la operación"
// @Param        limit   query  int     false  "Máximo 500"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/traceability/operations/{kind}/{id} [get]
func (h *TraceabilityHandler) ByOperation(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	return h.history(c, repository.HistoryFilter{
		OperationKind: entity.OperationKind(c.Params("kind")),
		OperationID:   id,
	})
}

// ByBatch godoc
// @Summary      Operaciones que consumieron un lote
// @Tags         traceability
// @Security     Bearer
// @Produce      json
// @Param        id      path   int  true   "ID del lote"
// @Param        limit   query  int  false  "Máximo 500"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.HistoryResponse
// @Router       /api/traceability/batches/{id} [get]
func (h *TraceabilityHandler) ByBatch(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	return h.history(c, repository.HistoryFilter{BatchID: id})
}

// ByMaterial godoc
// @Summary      Historial de consumo de una materia
// @Tags         traceability
// @Security     Bearer
// @Produce      json
// @Param        id      path   int  true   "ID de la materia prima"
// @Param        limit   query  int  false  "Máximo 500"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.HistoryResponse
// @Router       /api/traceability/materials/{id} [get]
func (h *TraceabilityHandler) ByMaterial(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	return h.history(c, repository.HistoryFilter{MaterialID: id})
}

func (h *TraceabilityHandler) history(c *fiber.Ctx, f repository.HistoryFilter) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, h.log, errBadBody)
	}
	if err := validate.Struct(&page); err != nil {
		return respondError(c, h.log, err)
	}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset

	records, err := h.ledger.ListConsumptionHistory(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.HistoryResponse{
		Records: toRecordDTOs(records),
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

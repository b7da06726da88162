package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/manufactura-api/internal/application/dto"
	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

// StockHandler expone el stock agregado por materia (protegido).
type StockHandler struct {
	ledger *inventory.Ledger
	log    *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.Ledger, log *logger.Logger) *StockHandler {
	return &StockHandler{ledger: ledger, log: log}
}

// List godoc
// @Summary      Stock agregado de todas las materias
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.StockDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	list, err := h.ledger.ListStock(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.StockDTO, 0, len(list))
	for _, s := range list {
		out = append(out, toStockDTO(s))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Total disponible de una materia
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        materialID  path  int  true  "ID de la materia prima"
// @Success      200  {object}  dto.StockDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{materialID} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "materialID")
	if err != nil {
		return respondError(c, h.log, err)
	}
	tot, err := h.ledger.GetTotal(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toStockDTO(*tot))
}

// SetThreshold godoc
// @Summary      Fijar umbral mínimo
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        materialID  path  int                      true  "ID de la materia prima"
// @Param        body        body  dto.SetThresholdRequest  true  "minimum_threshold >= 0"
// @Success      200  {object}  dto.StockDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ValidationErrorResponse
// @Router       /api/stock/{materialID}/threshold [put]
func (h *StockHandler) SetThreshold(c *fiber.Ctx) error {
	id, err := idParam(c, "materialID")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.SetThresholdRequest
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	tot, err := h.ledger.SetMinimumThreshold(c.UserContext(), id, in.MinimumThreshold)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toStockDTO(*tot))
}

// Reconcile godoc
// @Summary      Conciliar el total agregado contra los lotes
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        materialID  path  int  true  "ID de la materia prima"
// @Success      200  {object}  dto.ReconcileDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{materialID}/reconcile [post]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	id, err := idParam(c, "materialID")
	if err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.ledger.Reconcile(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ReconcileDTO{MaterialID: res.MaterialID, Before: res.Before, After: res.After, Adjusted: res.Adjusted})
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Materias por debajo del umbral mínimo, ordenadas por déficit.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/stock/replenishment [get]
func (h *StockHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.ledger.ReplenishmentList(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			MaterialID:         s.MaterialID,
			MaterialName:       s.MaterialName,
			Unit:               s.Unit,
			CurrentStock:       s.CurrentStock,
			MinimumThreshold:   s.MinimumThreshold,
			IdealStock:         s.IdealStock,
			SuggestedOrderQty:  s.SuggestedOrderQty,
			ConsumedLast30Days: s.ConsumedLast30Days,
			Status:             s.Status,
			Priority:           s.Priority,
		})
	}
	return c.JSON(fiber.Map{
		"total":          len(out),
		"replenishments": out,
	})
}

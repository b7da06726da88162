package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/manufactura-api/internal/application/dto"
	"github.com/jhoicas/manufactura-api/internal/application/production"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

// ProductionHandler órdenes de producción (protegido).
type ProductionHandler struct {
	svc *production.Service
	log *logger.Logger
}

// NewProductionHandler construye el handler.
func NewProductionHandler(svc *production.Service, log *logger.Logger) *ProductionHandler {
	return &ProductionHandler{svc: svc, log: log}
}

// Create godoc
// @Summary      Crear orden de producción
// @Description  Crea la orden y consume sus materias por FIFO en la misma transacción.
// @Tags         production-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductionOrderRequest  true  "orden y materias"
// @Success      201   {object}  dto.ProductionOrderResultDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      422   {object}  dto.ValidationErrorResponse
// @Router       /api/production-orders [post]
func (h *ProductionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductionOrderRequest
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.svc.Create(c.UserContext(), production.CreateOrderRequest{
		Code:          in.Code,
		StartDate:     derefTime(in.StartDate),
		EndDate:       derefTime(in.EndDate),
		DeliveryDate:  derefTime(in.DeliveryDate),
		ProductModel:  in.ProductModel,
		Color:         in.Color,
		Size:          in.Size,
		TotalQuantity: in.TotalQuantity,
		UserID:        GetUserID(c),
		Materials:     toItems(in.Materials),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResultDTO(res))
}

// Get godoc
// @Summary      Obtener orden con su trazabilidad
// @Tags         production-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la orden"
// @Success      200  {object}  dto.ProductionOrderDetailDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production-orders/{id} [get]
func (h *ProductionHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	detail, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ProductionOrderDetailDTO{
		Order:   toOrderDTO(detail.Order),
		Records: toRecordDTOs(detail.Records),
	})
}

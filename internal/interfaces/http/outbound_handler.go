package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/manufactura-api/internal/application/dto"
	"github.com/jhoicas/manufactura-api/internal/application/outbound"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

// OutboundHandler notas de salida manuales (protegido).
type OutboundHandler struct {
	svc *outbound.Service
	log *logger.Logger
}

// NewOutboundHandler construye el handler.
func NewOutboundHandler(svc *outbound.Service, log *logger.Logger) *OutboundHandler {
	return &OutboundHandler{svc: svc, log: log}
}

// Create godoc
// @Summary      Crear nota de salida
// @Description  Consume cada materia por FIFO; todas o ninguna. Una línea por lote tocado.
// @Tags         outbound-notes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOutboundNoteRequest  true  "items: material_id, quantity"
// @Success      201   {object}  dto.OutboundNoteDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      422   {object}  dto.ValidationErrorResponse
// @Router       /api/outbound-notes [post]
func (h *OutboundHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOutboundNoteRequest
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	note, err := h.svc.Create(c.UserContext(), outbound.CreateNoteRequest{
		Code:   in.Code,
		Date:   derefTime(in.Date),
		Reason: in.Reason,
		UserID: GetUserID(c),
		Items:  toItems(in.Items),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toNoteDTO(note))
}

// Get godoc
// @Summary      Obtener nota de salida con sus líneas
// @Tags         outbound-notes
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la nota"
// @Success      200  {object}  dto.OutboundNoteDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/outbound-notes/{id} [get]
func (h *OutboundHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	note, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toNoteDTO(note))
}

func toItems(in []dto.ItemRequest) []outbound.Item {
	out := make([]outbound.Item, 0, len(in))
	for _, it := range in {
		out = append(out, outbound.Item{MaterialID: it.MaterialID, Quantity: it.Quantity})
	}
	return out
}

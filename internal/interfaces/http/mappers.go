package http

import (
	"time"

	"github.com/jhoicas/manufactura-api/internal/application/dto"
	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/application/production"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
)

func toBatchDTO(b *entity.Batch) dto.BatchDTO {
	return dto.BatchDTO{
		ID:              b.ID,
		MaterialID:      b.MaterialID,
		Code:            b.Code,
		ReceivedAt:      b.ReceivedAt,
		InitialQuantity: b.InitialQuantity,
		Quantity:        b.Quantity,
		Unit:            b.Unit,
		Status:          b.Status(),
	}
}

func toStockDTO(s inventory.StockTotal) dto.StockDTO {
	return dto.StockDTO{
		MaterialID:       s.MaterialID,
		MaterialName:     s.MaterialName,
		Quantity:         s.Quantity,
		Unit:             s.Unit,
		Location:         s.Location,
		Status:           s.Status,
		MinimumThreshold: s.MinimumThreshold,
		UpdatedAt:        s.UpdatedAt,
	}
}

func toConsumptionDTO(r *inventory.ConsumptionResult) dto.ConsumptionDTO {
	out := dto.ConsumptionDTO{
		MaterialID:    r.MaterialID,
		MaterialName:  r.MaterialName,
		Unit:          r.Unit,
		TotalConsumed: r.TotalConsumed,
		Lots:          make([]dto.LotTouchedDTO, 0, len(r.LotsTouched)),
	}
	for _, l := range r.LotsTouched {
		out.Lots = append(out.Lots, dto.LotTouchedDTO{BatchID: l.BatchID, BatchCode: l.BatchCode, Quantity: l.Quantity})
	}
	return out
}

func toRecordDTOs(records []*entity.ConsumptionRecord) []dto.ConsumptionRecordDTO {
	out := make([]dto.ConsumptionRecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, dto.ConsumptionRecordDTO{
			ID:            r.ID,
			BatchID:       r.BatchID,
			BatchCode:     r.BatchCode,
			MaterialID:    r.MaterialID,
			Quantity:      r.Quantity,
			OperationKind: string(r.OperationKind),
			OperationID:   r.OperationID,
			OperationCode: r.OperationCode,
			ConsumedAt:    r.ConsumedAt,
			UserID:        r.UserID,
		})
	}
	return out
}

func toNoteDTO(n *entity.OutboundNote) dto.OutboundNoteDTO {
	out := dto.OutboundNoteDTO{
		ID:     n.ID,
		Code:   n.Code,
		Date:   n.Date,
		Reason: n.Reason,
		Status: n.Status,
		UserID: n.UserID,
		Lines:  make([]dto.OutboundNoteLineDTO, 0, len(n.Lines)),
	}
	for _, l := range n.Lines {
		out.Lines = append(out.Lines, dto.OutboundNoteLineDTO{
			ID:           l.ID,
			MaterialID:   l.MaterialID,
			MaterialName: l.MaterialName,
			BatchID:      l.BatchID,
			BatchCode:    l.BatchCode,
			Quantity:     l.Quantity,
			Unit:         l.Unit,
		})
	}
	return out
}

func toOrderDTO(o *entity.ProductionOrder) dto.ProductionOrderDTO {
	return dto.ProductionOrderDTO{
		ID:            o.ID,
		Code:          o.Code,
		StartDate:     o.StartDate,
		EndDate:       optionalTime(o.EndDate),
		DeliveryDate:  optionalTime(o.DeliveryDate),
		Status:        o.Status,
		ProductModel:  o.ProductModel,
		Color:         o.Color,
		Size:          o.Size,
		TotalQuantity: o.TotalQuantity,
		UserID:        o.UserID,
	}
}

func toOrderResultDTO(r *production.OrderResult) dto.ProductionOrderResultDTO {
	out := dto.ProductionOrderResultDTO{
		Order:        toOrderDTO(r.Order),
		Consumptions: make([]dto.ConsumptionDTO, 0, len(r.Consumptions)),
	}
	for _, c := range r.Consumptions {
		out.Consumptions = append(out.Consumptions, toConsumptionDTO(c))
	}
	if r.SyntheticNote != nil {
		note := toNoteDTO(r.SyntheticNote)
		out.SyntheticNote = &note
	}
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

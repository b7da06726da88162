package dto

import "github.com/shopspring/decimal"

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InsufficientStockResponse cuerpo del 409 por stock insuficiente.
type InsufficientStockResponse struct {
	ErrorResponse
	MaterialID int64           `json:"material_id"`
	Requested  decimal.Decimal `json:"requested"`
	Available  decimal.Decimal `json:"available"`
}

// ConflictResponse cuerpo del 409 por modificación concurrente.
type ConflictResponse struct {
	ErrorResponse
	Retryable bool `json:"retryable"`
}

// ValidationErrorResponse cuerpo del 422: campo -> regla incumplida.
type ValidationErrorResponse struct {
	ErrorResponse
	Fields map[string]string `json:"fields"`
}

package http

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/manufactura-api/internal/domain"
	invdomain "github.com/jhoicas/manufactura-api/internal/domain/inventory"
)

var validate = validator.New()

func init() {
	// decimal.Decimal se valida como número (required, gt, gte).
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// qscale: a lo sumo invdomain.QuantityScale decimales.
	_ = validate.RegisterValidation("qscale", hasStorableScale)
}

func hasStorableScale(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return invdomain.HasValidScale(v)
	case float64:
		return invdomain.HasValidScale(decimal.NewFromFloat(v))
	}
	return false
}

// bindAndValidate parsea el JSON y corre los tags de validator.
func bindAndValidate(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return validate.Struct(req)
}

// idParam lee un ID positivo de la ruta.
func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: parámetro %s", domain.ErrInvalidInput, name)
	}
	return id, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// check runs the struct rules and merges extra violations into one
// ValidationError.
func check(in any, extra map[string]string) error {
	fields := make(map[string]string)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fe.Tag()
		}
	}
	for k, v := range extra {
		fields[k] = v
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the root struct name: "PlaceOrderInput.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// ParseID parses an entity id received from a client.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidField(field, "uuid")
	}
	return id, nil
}

type RegisterInput struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
}

func (in RegisterInput) Validate() error { return check(in, nil) }

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (in LoginInput) Validate() error { return check(in, nil) }

// MaxAmount is the exclusive upper bound of any stored money value; the
// columns are decimal(10,2).
var MaxAmount = decimal.NewFromInt(100_000_000)

func priceRule(price decimal.Decimal) string {
	switch {
	case price.IsNegative():
		return "gte"
	case price.Round(2).GreaterThanOrEqual(MaxAmount):
		return "lt"
	}
	return ""
}

type CreateProductInput struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"stock" validate:"omitempty,gte=0,max=2147483647"`
	ImageURL    *string         `json:"imageUrl" validate:"omitempty,max=500"`
}

func (in CreateProductInput) Validate() error {
	extra := map[string]string{}
	if rule := priceRule(in.Price); rule != "" {
		extra["price"] = rule
	}
	return check(in, extra)
}

// UpdateProductInput is a partial update; nil fields stay untouched.
type UpdateProductInput struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0,max=2147483647"`
	ImageURL    *string          `json:"imageUrl" validate:"omitempty,max=500"`
	IsActive    *bool            `json:"isActive"`
}

func (in UpdateProductInput) Validate() error {
	extra := map[string]string{}
	if in.Price != nil {
		if rule := priceRule(*in.Price); rule != "" {
			extra["price"] = rule
		}
	}
	return check(in, extra)
}

type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type PlaceOrderInput struct {
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

func (in PlaceOrderInput) Validate() error { return check(in, nil) }

type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=PENDING PROCESSING COMPLETED CANCELLED"`
}

func (in UpdateStatusInput) Validate() error { return check(in, nil) }

func (in UpdateStatusInput) OrderStatus() domain.OrderStatus { return domain.OrderStatus(in.Status) }

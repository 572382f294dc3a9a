package handlers

import (
	"errors"
	"reflect"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// RegisterValidators teaches gin's validator about decimal amounts:
//
//	dgt0       value > 0
//	dmin=X     value >= X
//	dmax=X     value <= X
//	dscale=N   at most N decimal places
//
// The tags work on decimal.Decimal fields and on strings holding a decimal
// (multipart forms bind amounts as strings).
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected validator engine")
			return
		}
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		for tag, fn := range map[string]validator.Func{
			"dgt0":   decimalGreaterThanZero,
			"dmin":   decimalMin,
			"dmax":   decimalMax,
			"dscale": decimalScale,
		} {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
	})
	return err
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	if fl.Field().Kind() != reflect.String {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(fl.Field().String())
	return d, err == nil
}

func decimalGreaterThanZero(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && d.IsPositive()
}

func decimalMin(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	bound, err := decimal.NewFromString(fl.Param())
	return ok && err == nil && d.GreaterThanOrEqual(bound)
}

func decimalMax(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	bound, err := decimal.NewFromString(fl.Param())
	return ok && err == nil && d.LessThanOrEqual(bound)
}

// decimalScale rejects values the DECIMAL columns would round.
func decimalScale(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	places, err := strconv.ParseInt(fl.Param(), 10, 32)
	return ok && err == nil && d.Equal(d.Truncate(int32(places)))
}

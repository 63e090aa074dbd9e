package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nvaghela/dukaan-backend/pkg/util"
)

// RegisterCustomValidators wires the statutory identifier checks into gin's
// binding engine so request structs can use them as binding tags.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	rules := map[string]func(string) bool{
		"pan":      util.IsValidPAN,
		"aadhaar":  util.IsValidAadhaar,
		"gstin":    util.IsValidGSTIN,
		"pincode":  util.IsValidPINCode,
		"inmobile": util.IsValidMobile,
	}

	for tag, check := range rules {
		check := check
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			return err
		}
	}

	return nil
}

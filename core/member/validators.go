package member

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/abelmak/chapterdesk/core"
)

var (
	memberStatusTag  = "memberstatus"
	memberStatusText = "invalid member status"
)

// InitValidators registers member-specific validators. Call once at startup.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(memberStatusTag, memberStatusValidation)
	core.RegisterCustomTranslation(validate, translator, memberStatusTag, memberStatusText)
}

func memberStatusValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, s := range Statuses {
		if val == s {
			return true
		}
	}
	return false
}

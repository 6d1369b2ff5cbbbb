package chapter

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core"
)

var (
	chapterTypeTag  = "chaptertype"
	chapterTypeText = "invalid chapter type"

	// hierarchy rule texts
	natNoParentText     = "a national chapter cannot have a parent"
	stateParentReqText  = "a state chapter requires a national parent"
	stateFieldReqText   = "a state chapter requires a state"
	localParentReqText  = "a local chapter requires a state parent"
	localFieldsReqText  = "a local chapter requires a state and a city"
	parentNotFoundText  = "parent chapter not found"
	parentWrongKindText = "parent chapter has the wrong type"
)

// InitValidators registers chapter-specific validators. Call once at startup.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(chapterTypeTag, chapterTypeValidation)
	core.RegisterCustomTranslation(validate, translator, chapterTypeTag, chapterTypeText)
}

func chapterTypeValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, t := range Types {
		if val == t {
			return true
		}
	}
	return false
}

// checkHierarchy enforces the chapter hierarchy rules:
// national chapters are roots; state chapters hang off the national one and
// carry a state; local chapters hang off a state chapter and carry state + city.
func checkHierarchy(typ, parentID, state, city string, svc Service) error {
	fieldErr := func(field, text string) error {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: text})
	}

	switch typ {
	case TypeNational:
		if parentID != "" {
			return fieldErr("parent_chapter_id", natNoParentText)
		}
		return nil

	case TypeState:
		if parentID == "" {
			return fieldErr("parent_chapter_id", stateParentReqText)
		}
		if state == "" {
			return fieldErr("state", stateFieldReqText)
		}
		return checkParentType(parentID, TypeNational, svc)

	case TypeLocal:
		if parentID == "" {
			return fieldErr("parent_chapter_id", localParentReqText)
		}
		if state == "" || city == "" {
			return fieldErr("city", localFieldsReqText)
		}
		return checkParentType(parentID, TypeState, svc)
	}
	return fieldErr("type", chapterTypeText)
}

func checkParentType(parentID, wantType string, svc Service) error {
	parent, err := svc.GetByID(parentID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "parent_chapter_id", Error: parentNotFoundText})
		}
		return errors.Wrap(err, "checking parent chapter")
	}
	if parent.Type != wantType {
		return core.NewValidationError(nil, core.FieldError{Field: "parent_chapter_id", Error: parentWrongKindText})
	}
	return nil
}

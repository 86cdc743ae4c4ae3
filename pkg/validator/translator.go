package validator

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// NewUniversalTranslator registers the en/zh default messages on the validator engine
// NewUniversalTranslator 为校验器注册中英文默认错误信息
func NewUniversalTranslator(v *CustomValidator) (*ut.UniversalTranslator, error) {
	validate := v.Engine().(*validator.Validate)

	uni := ut.New(en.New(), en.New(), zh.New())

	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")

	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}
	registerUsernameTranslation(validate, enTran, "{0} must be 3-32 letters, digits, '_', '.' or '-'")
	registerUsernameTranslation(validate, zhTran, "{0}只能包含3到32位字母、数字、'_'、'.'或'-'")

	return uni, nil
}

func registerUsernameTranslation(validate *validator.Validate, trans ut.Translator, text string) {
	_ = validate.RegisterTranslation("username", trans,
		func(ut ut.Translator) error {
			return ut.Add("username", text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("username", fe.Field())
			return t
		},
	)
}

package app

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 将校验错误拼接为字符串
func (v ValidErrors) ErrorsToString() string {
	return v.Error()
}

// MapsToString 以字段名为键返回校验错误
func (v ValidErrors) MapsToString() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		out[err.Key] = err.Message
	}
	return out
}

// BindAndValid binds the request into v and translates validation failures with the request translator.
// BindAndValid 绑定请求参数并使用请求的翻译器翻译校验错误
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(v)
	if err == nil {
		return true, nil
	}

	var verrs val.ValidationErrors
	trans, ok := c.Value("trans").(ut.Translator)
	if !ok || !errors.As(err, &verrs) {
		return false, append(errs, &ValidError{Key: "body", Message: err.Error()})
	}

	for key, value := range verrs.Translate(trans) {
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		errs = append(errs, &ValidError{Key: key, Message: value})
	}
	return false, errs
}

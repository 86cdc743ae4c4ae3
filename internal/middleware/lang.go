package middleware

import (
	"strings"

	"github.com/haierkeys/memo-sync-service/pkg/app"
	"github.com/haierkeys/memo-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 创建带翻译器的语言中间件；语言只保存在本次请求的上下文中
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		} else if s = c.GetHeader("Accept-Language"); len(s) != 0 {
			lang = strings.SplitN(strings.SplitN(s, ",", 2)[0], ";", 2)[0]
		}

		lang = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "-", "_"))

		if uni != nil {
			base := strings.SplitN(lang, "_", 2)[0]
			if trans, found := uni.GetTranslator(base); found {
				c.Set("trans", trans)
			} else {
				trans, _ := uni.GetTranslator("en")
				c.Set("trans", trans)
			}
		}

		c.Set(app.LangKey, code.NormalizeLang(lang))

		c.Next()
	}
}

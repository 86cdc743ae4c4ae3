package code

import (
	"fmt"
	"reflect"
	"strings"
)

// lang type, used to store English and Chinese text
// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

const FALLBACK_LNG = "en"

// Message returns the text for the given language, falling back to English.
// Message 根据传入的语言返回相应的消息，无效时回退到英文
func (l lang) Message(language string) string {
	language = NormalizeLang(language)
	val := reflect.ValueOf(l)
	if field := val.FieldByName(language); field.IsValid() && field.String() != "" {
		return field.String()
	}
	if fallbackField := val.FieldByName(FALLBACK_LNG); fallbackField.IsValid() && fallbackField.String() != "" {
		return fallbackField.String()
	}
	return fmt.Sprintf("No message available for language: %s", language)
}

// GetSupportedLanguages function returns all languages supported by the lang type
// GetSupportedLanguages 函数返回 lang 类型支持的所有语言
func GetSupportedLanguages() []string {
	var languages []string
	typ := reflect.TypeOf(lang{})
	for i := 0; i < typ.NumField(); i++ {
		languages = append(languages, typ.Field(i).Name)
	}
	return languages
}

// NormalizeLang maps request values like "zh-CN" onto a supported language, or the fallback.
// NormalizeLang 将 "zh-CN" 之类的请求值映射为支持的语言，无法识别时返回默认语言
func NormalizeLang(language string) string {
	language = strings.ToLower(strings.ReplaceAll(language, "-", "_"))
	for _, l := range GetSupportedLanguages() {
		if l == language {
			return l
		}
	}
	if strings.HasPrefix(language, "zh") {
		return "zh_cn"
	}
	return FALLBACK_LNG
}

// Package convert holds struct copy and JSON codec helpers shared by the dao and service layers.
// convert 提供 dao 与 service 层共用的结构体复制和 JSON 编解码
package convert

import (
	"github.com/bytedance/sonic"
	"github.com/jinzhu/copier"
)

// StructAssign copies same-named fields from src into dst
// StructAssign 把 src 与 dst 相同字段名的值复制到 dst 中
func StructAssign(src any, dst any) error {
	return copier.Copy(dst, src)
}

// Marshal encodes v as JSON using sonic.
func Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// Unmarshal decodes JSON into v using sonic.
func Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

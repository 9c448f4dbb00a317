package utils

import (
	"regexp"
	"strings"
)

// EVM 地址格式：0x + 40 位十六进制
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeAddress 地址统一小写（入口处归一化，避免大小写不一致导致查询遗漏）
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// IsValidAddress 校验地址格式
func IsValidAddress(addr string) bool {
	return addressPattern.MatchString(strings.TrimSpace(addr))
}

// SameAddress 地址比较（忽略大小写）
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

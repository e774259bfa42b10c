package service

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// withStoreTimeout 为单次存储往返加超时，timeout <= 0 时不限时
func withStoreTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(sctx)
}

// validText 文本字段须为合法 UTF-8 且不含控制字符（PostgreSQL 拒收 NUL）
func validText(values ...string) bool {
	for _, v := range values {
		if !utf8.ValidString(v) {
			return false
		}
		if strings.IndexFunc(v, unicode.IsControl) >= 0 {
			return false
		}
	}
	return true
}

// truncateUTF8 按字节上限截断，不拆分多字节字符
func truncateUTF8(s string, maxBytes int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

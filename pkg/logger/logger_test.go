package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/maamriaabderahmene/greve-ensta/config"
)

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("无效日志级别应返回错误")
	}
}

func TestNewLogger_Console(t *testing.T) {
	l, err := NewLogger(&config.LogConfig{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("NewLogger 应成功: %v", err)
	}
	if l == nil {
		t.Fatal("logger 不应为 nil")
	}
}

func TestFromContext_Fallback(t *testing.T) {
	fallback := zap.NewNop()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("context 中无 logger 时应返回 fallback")
	}

	scoped := zap.NewNop().With(zap.String("request_id", "rid-1"))
	ctx := WithContext(context.Background(), scoped)
	if got := FromContext(ctx, fallback); got != scoped {
		t.Error("应返回 context 中的 logger")
	}
}

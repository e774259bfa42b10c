package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinels_WrapAndMatch(t *testing.T) {
	wrapped := fmt.Errorf("%w: 查询签到台账: %v", ErrDependency, errors.New("i/o timeout"))
	if !errors.Is(wrapped, ErrDependency) {
		t.Error("包装后应仍可识别 ErrDependency")
	}
	if errors.Is(wrapped, ErrIntegrity) {
		t.Error("ErrDependency 不应匹配 ErrIntegrity")
	}
	if errors.Is(ErrDuplicate, ErrDependency) {
		t.Error("ErrDuplicate 不应匹配 ErrDependency")
	}
}

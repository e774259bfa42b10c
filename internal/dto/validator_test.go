package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
)

func TestRegisterValidators_SessionID(t *testing.T) {
	if err := RegisterValidators(); err != nil {
		t.Fatalf("注册校验规则失败: %v", err)
	}

	ok := true
	valid := SetSessionControlRequest{Session: "session3", IsEnabled: &ok}
	if err := binding.Validator.ValidateStruct(&valid); err != nil {
		t.Errorf("session3 应通过校验: %v", err)
	}

	invalid := SetSessionControlRequest{Session: "session9", IsEnabled: &ok}
	if err := binding.Validator.ValidateStruct(&invalid); err == nil {
		t.Error("session9 不应通过校验")
	}
}

func TestPaginationDefaults(t *testing.T) {
	p := PaginationRequest{}
	if p.GetPage() != 1 || p.GetPageSize() != 20 || p.GetOffset() != 0 {
		t.Errorf("默认分页错误: page=%d size=%d offset=%d", p.GetPage(), p.GetPageSize(), p.GetOffset())
	}
	p = PaginationRequest{Page: 3, PageSize: 10}
	if p.GetOffset() != 20 {
		t.Errorf("期望 offset=20，实际 %d", p.GetOffset())
	}
}

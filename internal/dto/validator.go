package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
)

// RegisterValidators 向 gin 的校验引擎注册自定义规则
//
//	session_id: 必须为 session0..session4 之一
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("session_id", func(fl validator.FieldLevel) bool {
		return model.Session(fl.Field().String()).Valid()
	})
}

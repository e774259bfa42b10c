package errors

import "errors"

// 跨层错误分类：存储层与业务层通过 errors.Is 识别

var (
	// ErrDuplicate 唯一约束冲突（由 repository 从驱动错误翻译而来）
	ErrDuplicate = errors.New("记录已存在")

	// ErrDependency 依赖不可用：数据库/缓存不可达或超时，调用方可重试
	ErrDependency = errors.New("依赖服务暂不可用，请稍后重试")

	// ErrIntegrity 数据一致性异常：部分写入已提交，需人工核对，不做自动补偿
	ErrIntegrity = errors.New("数据一致性异常，请联系管理员")
)

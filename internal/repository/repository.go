package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Student        StudentRepository
	Location       LocationRepository
	Ledger         LedgerRepository
	IPRegistration IPRegistrationRepository
	SessionControl SessionControlRepository
	Admin          AdminRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Student:        NewStudentRepo(db),
		Location:       NewLocationRepo(db),
		Ledger:         NewLedgerRepo(db),
		IPRegistration: NewIPRegistrationRepo(db),
		SessionControl: NewSessionControlRepo(db),
		Admin:          NewAdminRepo(db),
	}
}

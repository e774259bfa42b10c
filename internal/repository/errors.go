package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/maamriaabderahmene/greve-ensta/pkg/errors"
)

// pgUniqueViolation PostgreSQL unique_violation
const pgUniqueViolation = "23505"

// translateError 将唯一约束冲突统一为 pkgerrors.ErrDuplicate，其余原样返回
// gorm 开启 TranslateError 时返回 ErrDuplicatedKey，未开启时直接检查 SQLSTATE
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrDuplicate, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", pkgerrors.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

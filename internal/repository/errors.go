package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrUserEmailTaken はメールアドレスが既に登録されている場合のエラー。
var ErrUserEmailTaken = errors.New("email already registered")

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// isUniqueViolation はエラーが一意制約違反かを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

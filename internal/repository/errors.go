package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate はデータ層の一意制約違反を表す。
// メールアドレスの重複、招待コードの衝突、メンバーシップの重複で発生する。
var ErrDuplicate = errors.New("duplicate key violation")

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = "23505"

// wrapDuplicate は一意制約違反をErrDuplicateに変換する。
// それ以外のエラーはそのまま返す。
func wrapDuplicate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

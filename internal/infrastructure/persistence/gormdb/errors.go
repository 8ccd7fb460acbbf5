package gormdb

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// MySQL错误码
const (
	mysqlDuplicateEntry   = 1062 // Duplicate entry 'xxx' for key 'yyy'
	mysqlLockWaitTimeout  = 1205 // Lock wait timeout exceeded
	mysqlDeadlockDetected = 1213 // Deadlock found when trying to get lock
)

// isDuplicateError 是否为唯一索引冲突
// 开启TranslateError后两种方言都会返回gorm.ErrDuplicatedKey,原始错误码作为兜底
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

// lockFailureReason 锁等待超时/死锁/序列化失败,返回原因标签;其他错误返回空串
// 这类错误说明事务没有执行成功,可以整体重试
func lockFailureReason(err error) string {
	if err == nil {
		return ""
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlLockWaitTimeout:
			return "lock_timeout"
		case mysqlDeadlockDetected:
			return "deadlock"
		}
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.LockNotAvailable:
			return "lock_timeout"
		case pgerrcode.DeadlockDetected:
			return "deadlock"
		case pgerrcode.SerializationFailure:
			return "serialization"
		}
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "lock_timeout"
	}
	return ""
}

func isLockFailure(err error) bool {
	return lockFailureReason(err) != ""
}

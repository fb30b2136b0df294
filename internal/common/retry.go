package common

import (
	"database/sql"
	"database/sql/driver"
	"time"
)

const retryBaseDelay = 100 * time.Millisecond

// IsRetryable 判断查询错误是否值得重试：
// 连接失效和网络层的临时错误可重试，业务错误直接返回
func IsRetryable(err error) bool {
	if err == sql.ErrConnDone || err == driver.ErrBadConn {
		return true
	}
	if temp, ok := err.(interface{ Temporary() bool }); ok {
		return temp.Temporary()
	}
	return false
}

// WithRetry 以指数退避重试操作，attempts 为总尝试次数
func WithRetry(operation func() error, attempts int) error {
	delay := retryBaseDelay
	var err error
	for i := 0; i < attempts; i++ {
		if err = operation(); err == nil || !IsRetryable(err) {
			return err
		}
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}

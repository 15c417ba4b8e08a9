// Package apperr 定义点单服务对外暴露的错误类型，
// 以及每种类型对应的 HTTP 状态码。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 对失败分类，用于传递和响应映射。
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindMigrationRequired // 表结构缺列且没有安全降级
	KindWriteFailure
	KindReadFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindMigrationRequired:
		return "migration_required"
	case KindWriteFailure:
		return "write_failure"
	case KindReadFailure:
		return "read_failure"
	default:
		return "unknown"
	}
}

// Error 携带错误类型、出错操作与底层原因。
// Msg 可返回给客户端；Err 只进日志。
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New 构造不带底层原因的错误。
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap 给 err 附加类型和操作名；err 为 nil 时返回 nil。
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf 返回错误链中最外层 *Error 的类型，没有则为 KindUnknown。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is 判断 err 是否属于给定类型。
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message 返回可展示给客户端的信息，未设置时用 fallback。
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}

// HTTPStatus 把错误类型映射为响应状态码。
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

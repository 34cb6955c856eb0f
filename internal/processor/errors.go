package processor

import (
	"errors"
	"fmt"
)

// ProcessError 带上下文的处理错误
// 错误针对单个文档；编排器捕获后记录日志并继续处理批次中的其余文档
type ProcessError struct {
	File string
	Op   string
	Err  error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.Err, e.Op, e.File)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Is 实现 errors.Is 以支持对底层哨兵错误的比较
func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// 错误构造函数
func NewExtractError(file string, err error) error {
	return &ProcessError{File: file, Op: "extract", Err: err}
}

func NewParseError(file string, err error) error {
	return &ProcessError{File: file, Op: "parse", Err: err}
}

func NewArchiveError(file string, err error) error {
	return &ProcessError{File: file, Op: "archive", Err: err}
}

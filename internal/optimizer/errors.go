package optimizer

import "errors"

var (
	// ErrInvalidParameters 参数不合法，会在任何搜索开始之前返回
	ErrInvalidParameters = errors.New("优化参数不合法")
	ErrUnknownStrategy   = errors.New("未知的优化算法")
	ErrNoResults         = errors.New("没有可比较的优化结果")
	ErrMalformedTrip     = errors.New("行程数据不合法")
)

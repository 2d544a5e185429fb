package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 非负时长，用于回退延迟与解析超时
//
// JSON 中既可写字符串（"300ms"），也可写纳秒整数；负值在解码时即被拒绝，
// 错误包装 ErrInvalidConfig。Duration 同时实现 flag.Value，命令行可直接使用。
type Duration time.Duration

// ParseDuration 解析非负时长字符串
func ParseDuration(s string) (Duration, error) {
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return checkDuration(v)
}

func checkDuration(v time.Duration) (Duration, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: negative duration %s", ErrInvalidConfig, v)
	}
	return Duration(v), nil
}

// UnmarshalJSON 实现 json.Unmarshaler 接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var (
		v   Duration
		err error
		s   string
		n   int64
	)
	switch {
	case json.Unmarshal(data, &s) == nil:
		v, err = ParseDuration(s)
	case json.Unmarshal(data, &n) == nil:
		v, err = checkDuration(time.Duration(n))
	default:
		return fmt.Errorf("%w: duration must be a string like \"300ms\" or nanoseconds, got %s",
			ErrInvalidConfig, data)
	}
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalJSON 以 "300ms" 形式输出
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Set 实现 flag.Value 接口
func (d *Duration) Set(s string) error {
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Duration 返回底层的 time.Duration 值
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

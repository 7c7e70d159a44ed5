package snowflake

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidConfig       = errors.New("snowflake: invalid config")
	ErrClockBeforeEpoch    = errors.New("snowflake: clock is before epoch")
	ErrClockMovedBackwards = errors.New("snowflake: clock moved backwards")
	ErrTimestampOverflow   = errors.New("snowflake: timestamp overflow")
)

// ConfigError 构造参数越界
type ConfigError struct {
	Field string
	Value int64
	Max   int64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("snowflake: %s must be between 0 and %d, got %d", e.Field, e.Max, e.Value)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// IsClockError 时钟类错误：早于 epoch、回拨、或超出 41 位时间窗口
func IsClockError(err error) bool {
	return errors.Is(err, ErrClockBeforeEpoch) ||
		errors.Is(err, ErrClockMovedBackwards) ||
		errors.Is(err, ErrTimestampOverflow)
}

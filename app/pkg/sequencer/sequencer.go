package sequencer

import (
	"time"

	"github.com/pkg/errors"
	"github.com/tsfdsong/snowflake/app/pkg/snowflake"
	"github.com/zeromicro/go-zero/core/logx"
)

// Conf 发号器配置，(DatacenterId, MachineId) 由外部分配并保证全局唯一
type Conf struct {
	DatacenterId int64  `json:",range=[0:31]"`
	MachineId    int64  `json:",range=[0:31]"`
	Epoch        string `json:",default=2024-01-01T00:00:00Z"`
	MaxBackward  string `json:",default=0s"`
}

// EpochTime 解析 RFC3339 格式的 Epoch
func (c Conf) EpochTime() (time.Time, error) {
	epoch, err := time.Parse(time.RFC3339, c.Epoch)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse epoch %q", c.Epoch)
	}
	return epoch, nil
}

// MaxBackwardDuration 允许吸收的时钟回拨
func (c Conf) MaxBackwardDuration() (time.Duration, error) {
	if c.MaxBackward == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.MaxBackward)
	if err != nil {
		return 0, errors.Wrapf(err, "parse max backward %q", c.MaxBackward)
	}
	if d < 0 {
		return 0, errors.Errorf("max backward must not be negative: %s", c.MaxBackward)
	}
	return d, nil
}

// NewGenerator 按配置创建生成器
func NewGenerator(c Conf, opts ...snowflake.Option) (*snowflake.Generator, error) {
	epoch, err := c.EpochTime()
	if err != nil {
		return nil, err
	}
	maxBackward, err := c.MaxBackwardDuration()
	if err != nil {
		return nil, err
	}

	opts = append([]snowflake.Option{snowflake.WithMaxBackward(maxBackward)}, opts...)
	g, err := snowflake.New(c.DatacenterId, c.MachineId, epoch, opts...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logx.Infof("Sequencer initialized: datacenter=%d, machine=%d, epoch=%s, maxBackward=%s",
		c.DatacenterId, c.MachineId, epoch.Format(time.RFC3339), maxBackward)
	return g, nil
}

// MustNewGenerator 同 NewGenerator，出错时退出
func MustNewGenerator(c Conf, opts ...snowflake.Option) *snowflake.Generator {
	g, err := NewGenerator(c, opts...)
	logx.Must(err)
	return g
}

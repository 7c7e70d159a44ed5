// Package snowflake 无锁 Snowflake ID 生成器
//
// 生成器状态只有一个 64 位原子字 (lastTimestamp << 12 | lastSequence)，
// 所有更新都通过 CAS 完成：读取 -> 计算候选值 -> CAS，失败则重试。
// 同一毫秒内 4096 个序列号用尽时自旋等待到下一毫秒。
package snowflake

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// 尚未发放任何 ID，解码后 timestamp 为 -1
const initialState int64 = -1

// Generator 无锁 ID 生成器，可被任意数量的 goroutine 并发使用
type Generator struct {
	datacenterID int64
	machineID    int64
	epoch        time.Time
	now          func() time.Time
	maxBackward  int64 // 允许吸收的时钟回拨，毫秒

	state atomic.Int64

	issued        atomic.Uint64
	casRetries    atomic.Uint64
	sequenceWaits atomic.Uint64
	clockErrors   atomic.Uint64
}

// Option 生成器选项
type Option func(*Generator)

// WithClock 替换时钟源，主要用于测试
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithMaxBackward 时钟回拨不超过 d 时自旋等待时钟追上，超过则报错。
// 默认 0，任何回拨都直接返回 ErrClockMovedBackwards。
func WithMaxBackward(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.maxBackward = d.Milliseconds()
		}
	}
}

// Stats 生成器累计计数
type Stats struct {
	Issued        uint64 `json:"issued"`
	CASRetries    uint64 `json:"casRetries"`
	SequenceWaits uint64 `json:"sequenceWaits"`
	ClockErrors   uint64 `json:"clockErrors"`
}

// New 创建生成器，datacenterID 与 machineID 取值范围均为 [0, 31]
func New(datacenterID, machineID int64, epoch time.Time, opts ...Option) (*Generator, error) {
	if datacenterID < 0 || datacenterID > MaxDatacenter {
		return nil, &ConfigError{Field: "datacenterId", Value: datacenterID, Max: MaxDatacenter}
	}
	if machineID < 0 || machineID > MaxMachine {
		return nil, &ConfigError{Field: "machineId", Value: machineID, Max: MaxMachine}
	}

	g := &Generator{
		datacenterID: datacenterID,
		machineID:    machineID,
		epoch:        time.UnixMilli(epoch.UnixMilli()),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.now == nil {
		// epoch 带上单调时钟读数，进程内墙上时钟跳变不影响时间戳；
		// 主机挂起期间单调时钟不走，恢复后时间戳会落后墙上时钟直到进程重启
		cur := time.Now()
		g.epoch = cur.Add(g.epoch.Sub(cur))
		g.now = time.Now
	}

	g.state.Store(initialState)
	return g, nil
}

// NextID 生成下一个 ID。
// 时钟早于 epoch、时钟回拨、时间戳超出 41 位时返回错误，不会内部重试；
// CAS 竞争和序列号耗尽只体现为延迟。
func (g *Generator) NextID() (int64, error) {
	for {
		// 先读状态再读时钟：已提交的时间戳一定不晚于此后采样的时间
		last := g.state.Load()
		lastTimestamp, sequence := unpackState(last)

		timestamp, err := g.elapsed()
		if err != nil {
			return 0, g.clockError(err, timestamp, lastTimestamp)
		}

		if timestamp < lastTimestamp {
			if lastTimestamp-timestamp > g.maxBackward {
				return 0, g.clockError(ErrClockMovedBackwards, timestamp, lastTimestamp)
			}
			if timestamp, err = g.waitAfter(lastTimestamp - 1); err != nil {
				return 0, g.clockError(err, timestamp, lastTimestamp)
			}
		}

		if timestamp == lastTimestamp {
			sequence = (sequence + 1) & MaxSequence
			if sequence == 0 {
				g.sequenceWaits.Add(1)
				if timestamp, err = g.waitAfter(lastTimestamp); err != nil {
					return 0, g.clockError(err, timestamp, lastTimestamp)
				}
			}
		} else {
			sequence = 0
		}

		if g.state.CompareAndSwap(last, packState(timestamp, sequence)) {
			g.issued.Add(1)
			return Compose(timestamp, g.datacenterID, g.machineID, sequence), nil
		}
		g.casRetries.Add(1)
	}
}

// elapsed 当前时间距 epoch 的毫秒数，向下取整
func (g *Generator) elapsed() (int64, error) {
	d := g.now().Sub(g.epoch)
	ms := d.Milliseconds()
	if d < 0 && d%time.Millisecond != 0 {
		ms--
	}

	if ms < 0 {
		return ms, ErrClockBeforeEpoch
	}
	// 41 位可以覆盖约 69 年
	if ms > MaxTimestamp {
		return ms, ErrTimestampOverflow
	}
	return ms, nil
}

// waitAfter 让出 CPU 并重新采样，直到时间戳大于 last
func (g *Generator) waitAfter(last int64) (int64, error) {
	for {
		runtime.Gosched()
		timestamp, err := g.elapsed()
		if err != nil || timestamp > last {
			return timestamp, err
		}
	}
}

func (g *Generator) clockError(err error, timestamp, lastTimestamp int64) error {
	g.clockErrors.Add(1)
	logx.Errorf("snowflake[%d-%d]: %v, timestamp=%d, last=%d",
		g.datacenterID, g.machineID, err, timestamp, lastTimestamp)
	return err
}

// Stats 返回累计计数快照
func (g *Generator) Stats() Stats {
	return Stats{
		Issued:        g.issued.Load(),
		CASRetries:    g.casRetries.Load(),
		SequenceWaits: g.sequenceWaits.Load(),
		ClockErrors:   g.clockErrors.Load(),
	}
}

func (g *Generator) DatacenterID() int64 { return g.datacenterID }

func (g *Generator) MachineID() int64 { return g.machineID }

// Epoch 返回生成器使用的基准时间（UTC，毫秒精度）
func (g *Generator) Epoch() time.Time {
	return time.UnixMilli(g.epoch.UnixMilli()).UTC()
}

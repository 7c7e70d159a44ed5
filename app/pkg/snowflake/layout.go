package snowflake

import "time"

// ID 位布局（高位 -> 低位）:
//
//	| 0 | timestamp (41) | datacenter (5) | machine (5) | sequence (12) |
const (
	TimestampBits  = 41
	DatacenterBits = 5
	MachineBits    = 5
	SequenceBits   = 12

	MaxTimestamp  int64 = 1<<TimestampBits - 1
	MaxDatacenter int64 = 1<<DatacenterBits - 1
	MaxMachine    int64 = 1<<MachineBits - 1
	MaxSequence   int64 = 1<<SequenceBits - 1

	MachineShift    = SequenceBits
	DatacenterShift = SequenceBits + MachineBits
	TimestampShift  = SequenceBits + MachineBits + DatacenterBits
)

// Parts 解码后的 ID 各字段
type Parts struct {
	Timestamp    int64 `json:"timestamp"`
	DatacenterID int64 `json:"datacenterId"`
	MachineID    int64 `json:"machineId"`
	Sequence     int64 `json:"sequence"`
}

// Compose 按位布局拼装 ID，超出位宽的高位会被截掉
func Compose(timestamp, datacenterID, machineID, sequence int64) int64 {
	return (timestamp&MaxTimestamp)<<TimestampShift |
		(datacenterID&MaxDatacenter)<<DatacenterShift |
		(machineID&MaxMachine)<<MachineShift |
		sequence&MaxSequence
}

// Decompose 拆解 ID
func Decompose(id int64) Parts {
	return Parts{
		Timestamp:    (id >> TimestampShift) & MaxTimestamp,
		DatacenterID: (id >> DatacenterShift) & MaxDatacenter,
		MachineID:    (id >> MachineShift) & MaxMachine,
		Sequence:     id & MaxSequence,
	}
}

// Time 以 epoch 为基准还原 ID 的生成时间
func (p Parts) Time(epoch time.Time) time.Time {
	return epoch.Add(time.Duration(p.Timestamp) * time.Millisecond).UTC()
}

// state word: timestamp << SequenceBits | sequence
func packState(timestamp, sequence int64) int64 {
	return timestamp<<SequenceBits | sequence
}

func unpackState(state int64) (timestamp, sequence int64) {
	return state >> SequenceBits, state & MaxSequence
}

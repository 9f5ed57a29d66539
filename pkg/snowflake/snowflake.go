package snowflake

import (
	"fmt"
	"time"

	"github.com/sony/sonyflake/v2"
	"github.com/spf13/viper"
)

var node *sonyflake.Sonyflake

// MustInit 初始化 snowflake。
// 每次调用分配一个全局唯一ID，沙箱内文件名由它派生，
// 并发调用因此不会发生文件名碰撞。
func MustInit(viper *viper.Viper) {
	// 1. 读取配置文件中的起始时间
	st, err := time.Parse(time.DateOnly, viper.GetString("snowflake.start_time"))
	if err != nil {
		panic(fmt.Errorf("parse start time failed, err:%w", err))
	}
	settings := sonyflake.Settings{
		StartTime: st,
		MachineID: func() (int, error) {
			return viper.GetInt("snowflake.machine_id"), nil
		},
		CheckMachineID: func(int) bool { return true },
	}
	node, err = sonyflake.New(settings)
	if err != nil {
		panic(fmt.Errorf("init sonyflake failed, err:%w", err))
	}
}

// NextID 生成下一个唯一ID
func NextID() (int64, error) {
	return node.NextID()
}

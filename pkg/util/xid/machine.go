package xid

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// EnvMachineID 显式指定机器 ID 的环境变量（0-65535）。
const EnvMachineID = "XSTAGE_MACHINE_ID"

// DefaultMachineID 返回默认机器 ID。
//
// 优先读取 XSTAGE_MACHINE_ID；未设置时对主机名做哈希取低 16 位。
func DefaultMachineID() (uint16, error) {
	if s := os.Getenv(EnvMachineID); s != "" {
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", ErrInvalidMachineID, EnvMachineID, s)
		}
		return uint16(v), nil
	}
	host, err := os.Hostname()
	if err != nil {
		return 0, fmt.Errorf("xid: hostname: %w", err)
	}
	return hashToMachineID(host), nil
}

func hashToMachineID(s string) uint16 {
	return uint16(xxhash.Sum64String(s) & machineMask)
}

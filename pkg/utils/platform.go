//go:build !mobile

package utils

import "os"

// mobileEmulateEnv 设为 "1" 时桌面端按移动端处理（用于本地调试触摸提示）
const mobileEmulateEnv = "PARTICLEFX_MOBILE_EMULATE"

// IsMobile 检测当前是否在移动设备上运行，桌面端默认返回 false
func IsMobile() bool {
	return os.Getenv(mobileEmulateEnv) == "1"
}

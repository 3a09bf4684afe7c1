//go:build mobile

package utils

// IsMobile 在 -tags mobile 构建（ebitenmobile 绑定）中恒为 true，
// 查看器据此显示触摸操作提示。
func IsMobile() bool {
	return true
}

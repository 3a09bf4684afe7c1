//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// storageSubdir 设置和预设在应用数据目录下的子目录
const storageSubdir = "particlefx"

// EnsureStorageDir 在 gdata 打开前创建并验证 Android 存储目录。
// gdata 使用 /data/data/{package}/ 但不会预先创建子目录。
func EnsureStorageDir() error {
	dir := GetStoragePath()
	if dir == "" {
		return fmt.Errorf("failed to detect Android package name")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	marker := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(marker, nil, 0644); err != nil {
		return fmt.Errorf("storage directory %s is not writable: %w", dir, err)
	}
	os.Remove(marker)

	return nil
}

// GetStoragePath 返回 /data/data/{package}/particlefx，无法识别包名时返回空字符串
func GetStoragePath() string {
	app, err := androidPackageName()
	if err != nil {
		return ""
	}
	return filepath.Join("/data/data", app, storageSubdir)
}

// androidPackageName 从 /proc/self/cmdline 读取包名
func androidPackageName() (string, error) {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}
	name := make([]byte, 0, len(data))
	for _, ch := range data {
		if ch == 0 || ch == '\n' {
			continue
		}
		name = append(name, ch)
	}
	if len(name) == 0 {
		return "", fmt.Errorf("empty /proc/self/cmdline")
	}
	return string(name), nil
}

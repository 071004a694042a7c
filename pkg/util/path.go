package util

import (
	"os"
	"path/filepath"
)

const (
	DataFolder = "data"
)

var UseWorkingDir = false

// RelativePath 获取相对可执行文件的路径
func RelativePath(name string) string {
	if UseWorkingDir {
		return name
	}

	if filepath.IsAbs(name) {
		return name
	}
	e, _ := os.Executable()
	return filepath.Join(filepath.Dir(e), name)
}

// DataPath relative path for store persist data file
func DataPath(child string) string {
	dataPath := RelativePath(DataFolder)
	if !Exists(dataPath) {
		os.MkdirAll(dataPath, 0700)
	}

	if filepath.IsAbs(child) {
		return child
	}

	return filepath.Join(dataPath, child)
}

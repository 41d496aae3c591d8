// Package utils contains file system abstraction methods for easier testing
package utils

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePath ensures the path stays within the working directory
func ValidatePath(workDir, inputPath string) (string, error) {
	if inputPath == "" {
		slog.Info("input path is empty, use work root")
		return workDir, nil
	}

	// Convert relative path to absolute path within the working directory
	var fullPath string
	if filepath.IsAbs(inputPath) {
		slog.Info("input path is absolute path", "inputPath", inputPath)
		fullPath = inputPath
	} else {
		fullPath = filepath.Join(workDir, inputPath)
		slog.Info("input path is relative", "inputPath", inputPath, "fullPath", fullPath)
	}

	// Clean the path
	fullPath = filepath.Clean(fullPath)

	// Ensure the path is within the working directory
	if fullPath != workDir && !strings.HasPrefix(fullPath, workDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path is outside working directory: %s", inputPath)
	}

	return fullPath, nil
}

func Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func WalkDir(root string, walkFn filepath.WalkFunc) error {
	return filepath.Walk(root, walkFn)
}

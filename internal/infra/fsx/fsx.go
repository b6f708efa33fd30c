package fsx

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// invalidFilenameChars 是文件名里必须替换为下划线的字符集。
// 该集合与既有产物保持一致：`\ / * ? : " < > |`。
const invalidFilenameChars = `\/*?:"<>|`

// SanitizeFilename 把文件名里的非法字符替换为下划线。
// 只处理文件名本身，不处理路径分隔（调用方负责只传 base name）。
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidFilenameChars, r) {
			return '_'
		}
		return r
	}, name)
}

// SanitizeLocalFilename 在 SanitizeFilename 之上再把全角竖线 '｜' 替换为 '-'。
// 本地媒体库对这个字符的兼容性最差（历史行为，保持一致）。
func SanitizeLocalFilename(name string) string {
	return strings.ReplaceAll(SanitizeFilename(name), "｜", "-")
}

// EnsureDir 按需创建目录（已存在则为 no-op）。
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// CopyFile 把 src 复制为 dst（覆盖已存在的 dst；目标目录按需创建）。
// 复制而不是 rename：本地媒体库可能在另一块盘上。
func CopyFile(src, dst string) error {
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// WriteFileAtomicReplace 在 dir 下原子写入 name（临时文件 + rename），
// 覆盖已存在的同名文件。用于 report.json / failed_tracks.txt 等内部产物。
//
// - 临时文件必须与目标文件在同目录，以保证 rename 的原子性
// - 目录 Sync 采用 best-effort（避免平台差异导致误报失败）
func WriteFileAtomicReplace(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	dst := filepath.Join(dir, name)

	// 创建同目录临时文件（前缀带 '.'，避免污染目录视图）。
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := writeAll(tmp, data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, dst); err != nil {
		return err
	}

	_ = syncDirBestEffort(dir)
	return nil
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func syncDirBestEffort(dir string) error {
	// Windows 上目录 Sync 的语义与支持情况不稳定，这里直接跳过。
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

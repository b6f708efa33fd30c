package scp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testCfg = Config{
	User:       "media",
	Host:       "nas.local",
	Port:       "2222",
	KeyPath:    "/home/u/.ssh/id_ed25519",
	RemoteBase: "/srv/music",
}

func TestRemotePath_SanitizesFilename(t *testing.T) {
	got := RemotePath(testCfg, "Rock", `What? A "Song".mp3`)
	want := `media@nas.local:/srv/music/Rock/What_ A _Song_.mp3`
	if got != want {
		t.Fatalf("期望 %q，实际 %q", want, got)
	}
}

func TestBuildArgs(t *testing.T) {
	args := buildArgs(testCfg, "/tmp/song.mp3", "media@nas.local:/srv/music/Rock/x.mp3")
	want := []string{"-P", "2222", "-i", "/home/u/.ssh/id_ed25519", "/tmp/song.mp3", "media@nas.local:/srv/music/Rock/x.mp3"}
	if len(args) != len(want) {
		t.Fatalf("参数数量不对：%v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("参数 %d：期望 %q，实际 %q", i, want[i], args[i])
		}
	}
}

// fakeSCP 生成一个记录参数的桩脚本。
func fakeSCP(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-scp")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("写入桩脚本失败：%v", err)
	}
	return path
}

func TestTransfer_StagesCopyAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "My Song.mp3")
	if err := os.WriteFile(local, []byte("audio"), 0o644); err != nil {
		t.Fatalf("写入本地文件失败：%v", err)
	}

	argsFile := filepath.Join(t.TempDir(), "args")
	c := Client{Bin: fakeSCP(t, `echo "$@" > `+argsFile)}

	if err := c.Transfer(context.Background(), testCfg, local, "Rock"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("桩脚本未被调用：%v", err)
	}
	got := string(b)
	// 本地参数必须是暂存副本，远端必须带原始（清洗后）文件名。
	if !strings.Contains(got, stagingName) {
		t.Fatalf("期望传输暂存副本 %s：%q", stagingName, got)
	}
	if !strings.Contains(got, "media@nas.local:/srv/music/Rock/My Song.mp3") {
		t.Fatalf("远端路径不正确：%q", got)
	}

	// 暂存副本必须被清理。
	if _, err := os.Stat(filepath.Join(dir, stagingName)); !os.IsNotExist(err) {
		t.Fatalf("暂存副本未被清理")
	}
}

func TestTransfer_NonZeroExitCarriesStderr(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "x.mp3")
	if err := os.WriteFile(local, []byte("audio"), 0o644); err != nil {
		t.Fatalf("写入本地文件失败：%v", err)
	}

	c := Client{Bin: fakeSCP(t, `echo "Permission denied (publickey)" >&2; exit 1`)}
	err := c.Transfer(context.Background(), testCfg, local, "Rock")
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("期望 *Error，实际 %T", err)
	}
	if !strings.Contains(err.Error(), "Permission denied") {
		t.Fatalf("错误信息应包含 stderr：%v", err)
	}

	// 失败路径同样要清理暂存副本。
	if _, err := os.Stat(filepath.Join(dir, stagingName)); !os.IsNotExist(err) {
		t.Fatalf("失败后暂存副本未被清理")
	}
}

func TestTransfer_MissingLocalFile(t *testing.T) {
	c := Client{Bin: fakeSCP(t, `exit 0`)}
	err := c.Transfer(context.Background(), testCfg, filepath.Join(t.TempDir(), "nope.mp3"), "Rock")
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/John-Robertt/yt2mp3/internal/domain"
)

const (
	// ErrCodeNotFound 表示需要的配置文件不存在（无参运行且 cwd 下没有 tracks.json，
	// 或 CLI 显式指定的文件不存在）。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或远程模式缺少 SSH 环境配置。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingTracks 表示合并后的任务列表为空。
	ErrCodeMissingTracks = "config_missing_tracks"
)

const (
	// DefaultConfigName 是无参运行时在 cwd 下查找的配置文件名。
	DefaultConfigName = "tracks.json"
	// DefaultDestination 是条目与配置都未指定时的目录标签。
	DefaultDestination = "Music"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --local=false 必须能覆盖未来可能的配置默认。
type CLIArgs struct {
	ConfigPaths []string

	Local    bool
	LocalSet bool

	Verbose bool
}

// TrackSpec 对应配置文件里 tracks 数组的一项。
type TrackSpec struct {
	URL         string `json:"url"`
	Destination string `json:"destination"`
}

// FileConfig 对应单个 tracks.json 的解析结构。
type FileConfig struct {
	Tracks             []TrackSpec `json:"tracks"`
	DefaultDestination string      `json:"default_destination"`
}

// TransferEnv 是远程传输所需的环境变量（进程启动时读取一次）。
type TransferEnv struct {
	User        string `env:"SSH_USER"`
	Host        string `env:"SSH_HOST"`
	Port        string `env:"SSH_PORT" env-default:"22"`
	KeyPath     string `env:"SSH_KEY_PATH"`
	RemoteBase  string `env:"REMOTE_BASE_PATH"`
	MusicFolder string `env:"MUSIC_FOLDER" env-default:"Music"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置
//（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Tracks             []domain.Track
	DefaultDestination string

	Local   bool
	Verbose bool

	// ConfigDir 是第一个配置文件所在目录；报告产物写到这里。
	ConfigDir string

	Transfer TransferEnv
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingTracks:
		return fmt.Sprintf("%s：配置文件 %q 的任务列表为空", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 按文档约定发现并读取配置文件，然后与 CLI 参数、环境变量
// 合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供了路径：逐个读取，每个都必须存在
// 2) CLI 未提供：必须读取 <cwd>/tracks.json
//
// 合并规则（固定）：
// - tracks：按文件顺序拼接
// - default_destination：第一个非空值生效
// - local/verbose：仅由 CLI 控制；默认远程模式
// - SSH 环境：远程模式下 user/host/key/base 缺一不可
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	paths := cli.ConfigPaths
	if len(paths) == 0 {
		p := filepath.Join(cwd, DefaultConfigName)
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: p, Err: os.ErrNotExist}
			}
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		paths = []string{p}
	}

	var (
		tracks      []domain.Track
		defaultDest string
	)
	for _, p := range paths {
		fc, err := readFileConfig(p)
		if err != nil {
			if os.IsNotExist(err) {
				return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: p, Err: err}
			}
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		for _, t := range fc.Tracks {
			tracks = append(tracks, domain.Track{
				URL:         strings.TrimSpace(t.URL),
				Destination: strings.TrimSpace(t.Destination),
			})
		}
		if defaultDest == "" {
			defaultDest = strings.TrimSpace(fc.DefaultDestination)
		}
	}
	if len(tracks) == 0 {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingTracks, Path: paths[0]}
	}

	var env TransferEnv
	if err := cleanenv.ReadEnv(&env); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: paths[0], Err: err}
	}

	local := false
	if cli.LocalSet {
		local = cli.Local
	}
	if !local {
		if missing := missingTransferEnv(env); len(missing) > 0 {
			return EffectiveConfig{}, &Error{
				Code: ErrCodeInvalid,
				Path: paths[0],
				Err:  fmt.Errorf("远程模式缺少环境变量：%s", strings.Join(missing, ", ")),
			}
		}
	}

	absFirst, err := filepath.Abs(paths[0])
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: paths[0], Err: err}
	}

	return EffectiveConfig{
		Tracks:             tracks,
		DefaultDestination: defaultDest,
		Local:              local,
		Verbose:            cli.Verbose,
		ConfigDir:          filepath.Dir(absFirst),
		Transfer:           env,
	}, nil
}

func missingTransferEnv(env TransferEnv) []string {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"SSH_USER", env.User},
		{"SSH_HOST", env.Host},
		{"SSH_KEY_PATH", env.KeyPath},
		{"REMOTE_BASE_PATH", env.RemoteBase},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// readFileConfig 读取并解析 JSON 配置文件。文件不存在原样返回 os 错误，
// 由调用方映射 error_code。
func readFileConfig(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, err
	}
	var fc FileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, err
	}
	return fc, nil
}

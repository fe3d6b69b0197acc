package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const DefaultConfigRelPath = "configs/conf.yml"

// Loader 读取 yaml 配置到 target，并在文件变更时热更新。
// target 必须是结构体指针；热更新时先解到新值再整体替换，读方通过 Snapshot 拿一致视图。
type Loader[T any] struct {
	mu       sync.RWMutex
	v        *viper.Viper
	cur      T
	onChange []func(T)
}

// Load 解析配置文件路径：显式路径优先，否则从当前目录向上查找 configs/conf.yml。
func Load[T any](path string) (*Loader[T], error) {
	resolved, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	l := &Loader[T]{v: viper.New()}
	l.v.SetConfigFile(resolved)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	}
	if err := l.decode(&l.cur); err != nil {
		return nil, err
	}
	l.v.OnConfigChange(func(fsnotify.Event) {
		// 热更新失败保留旧配置
		_ = l.apply()
	})
	l.v.WatchConfig()
	return l, nil
}

// Reload 立即重读文件并触发回调，文件监听不可用时可以手动调用。
func (l *Loader[T]) Reload() error {
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reread config: %w", err)
	}
	return l.apply()
}

func (l *Loader[T]) apply() error {
	var next T
	if err := l.decode(&next); err != nil {
		return err
	}
	l.mu.Lock()
	l.cur = next
	hooks := append([]func(T){}, l.onChange...)
	l.mu.Unlock()
	for _, fn := range hooks {
		fn(next)
	}
	return nil
}

// Snapshot 返回当前配置的值拷贝。
func (l *Loader[T]) Snapshot() T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cur
}

// OnChange 注册热更新回调。
func (l *Loader[T]) OnChange(fn func(T)) {
	l.mu.Lock()
	l.onChange = append(l.onChange, fn)
	l.mu.Unlock()
}

func (l *Loader[T]) decode(out *T) error {
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := l.v.Unmarshal(out, func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = hook
		dc.TagName = "mapstructure"
	}); err != nil {
		return fmt.Errorf("decode config into %s: %w", reflect.TypeOf(out).Elem(), err)
	}
	return nil
}

// Resolve 返回配置文件的绝对路径。
func Resolve(path string) (string, error) {
	curDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(curDir, path)
		}
		if !fileExist(path) {
			return "", fmt.Errorf("config file not exist, path=%s", path)
		}
		return path, nil
	}
	dir := curDir
	for {
		candidate := filepath.Join(dir, DefaultConfigRelPath)
		if fileExist(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("config file not exist, searched " + DefaultConfigRelPath + " upward from " + curDir)
		}
		dir = parent
	}
}

func fileExist(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

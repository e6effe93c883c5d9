package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local 把每个键存成基础目录下的一个 JSON 文件
type Local struct {
	basePath string
}

// NewLocal 创建文件键值存储
func NewLocal(basePath string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &Local{basePath: basePath}, nil
}

func (s *Local) path(key string) string {
	// 五个集合键都是安全的文件名，无需转义
	return filepath.Join(s.basePath, key+".json")
}

func (s *Local) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("读取文件失败: %w", err)
	}
	return string(data), true, nil
}

func (s *Local) Set(ctx context.Context, key, value string) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("替换文件失败: %w", err)
	}
	return nil
}

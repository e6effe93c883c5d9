package kv

import (
	"context"
	"sync"
)

// Memory 是内存实现，主要用于测试
type Memory struct {
	mu     sync.RWMutex
	values map[string]string

	// SetErr 非空时所有 Set 调用返回该错误，用于模拟持久化失败
	SetErr error
}

// NewMemory 创建内存键值存储
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

package domain

import "fmt"

// ConfigurationError 表示排课目录本身不可用（例如没有教室），此时无法生成或评估任何排课方案
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("排课目录配置错误: %s", e.Reason)
}

func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

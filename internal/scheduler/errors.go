package scheduler

import "fmt"

// InsufficientPopulationError 选择父代时至少需要两个不同的个体
type InsufficientPopulationError struct {
	Size int
}

func (e *InsufficientPopulationError) Error() string {
	return fmt.Sprintf("种群大小为 %d，至少需要 2 个个体才能选择父代", e.Size)
}

// InvariantViolationError 表示染色体缺少或多出了课程，这说明繁殖过程存在 bug，而不是输入数据有问题
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("染色体不合法: %s", e.Reason)
}

// Package saga 顺序执行一组步骤，任一步骤失败时按相反顺序执行已完成步骤的补偿
//
// 适用于无法放进同一个数据库事务的组合操作，例如"先写文件，再更新数据库"：
// 数据库更新失败时删除刚写入的文件，避免留下孤儿文件。
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step 一个Saga步骤
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 可为nil，表示无需补偿
}

// Saga 步骤编排器，非并发安全，每次操作新建一个
type Saga struct {
	name    string
	steps   []Step
	timeout time.Duration
}

// NewSaga 创建Saga，timeout<=0表示不设整体超时
func NewSaga(name string, timeout time.Duration) *Saga {
	return &Saga{name: name, timeout: timeout}
}

// AddStep 追加步骤
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Action: action, Compensate: compensate})
	return s
}

// StepError 某一步骤失败
// Unwrap返回步骤原始错误，调用方可继续用errors.As取出业务错误
type StepError struct {
	Saga         string
	Step         string
	Err          error
	Compensation error // 补偿过程中的错误（errors.Join合并），nil表示补偿全部成功
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("saga %s: step %s failed: %v", e.Saga, e.Step, e.Err)
	if e.Compensation != nil {
		msg += fmt.Sprintf(" (compensation: %v)", e.Compensation)
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Execute 依次执行所有步骤
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		err := ctx.Err()
		if err == nil && step.Action != nil {
			err = step.Action(ctx)
		}
		if err != nil {
			return &StepError{
				Saga:         s.name,
				Step:         step.Name,
				Err:          err,
				Compensation: s.compensate(context.WithoutCancel(ctx), s.steps[:i]),
			}
		}
	}

	return nil
}

// compensate 倒序补偿已完成的步骤
// 使用WithoutCancel：原ctx可能已超时，补偿仍需执行
func (s *Saga) compensate(ctx context.Context, done []Step) error {
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			zap.L().Warn("saga compensation failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}

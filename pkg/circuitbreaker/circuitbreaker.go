// Package circuitbreaker 熔断器
//
// 用于保护非关键依赖（目前是Redis缓存）：依赖连续失败后直接短路，
// 调用方走降级路径（直接查数据库），而不是每个请求都等待超时。
//
// 状态机：
//
//	Closed --(ReadyToTrip)--> Open --(Timeout到期)--> HalfOpen
//	HalfOpen --(成功)--> Closed
//	HalfOpen --(失败)--> Open
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// ErrOpenState 熔断器打开，请求被拒绝
var ErrOpenState = errors.New("circuit breaker is open")

// ErrTooManyRequests 半开状态下探测请求已达上限
var ErrTooManyRequests = errors.New("circuit breaker: too many requests in half-open state")

// Counts 当前统计窗口内的计数
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// FailureRate 失败率
func (c Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

// Settings 熔断器配置，零值字段使用默认值
type Settings struct {
	Name string

	// MaxRequests 半开状态允许通过的探测请求数，默认1
	MaxRequests uint32

	// Interval 关闭状态下统计窗口长度，0表示不按时间清零
	Interval time.Duration

	// Timeout 打开状态持续多久后进入半开，默认30s
	Timeout time.Duration

	// ReadyToTrip 关闭状态下每次失败后调用，返回true则打开熔断，默认连续失败5次
	ReadyToTrip func(counts Counts) bool

	// IsSuccessful 判断一次调用是否算成功，默认 err == nil
	// 例如缓存未命中(redis.Nil)不应计为失败
	IsSuccessful func(err error) bool

	// OnStateChange 状态变化回调（日志、指标）
	OnStateChange func(name string, from, to State)
}

// CircuitBreaker 熔断器
type CircuitBreaker struct {
	settings Settings

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time
}

// New 创建熔断器
func New(settings Settings) *CircuitBreaker {
	if settings.MaxRequests == 0 {
		settings.MaxRequests = 1
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = func(c Counts) bool { return c.ConsecutiveFailures >= 5 }
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = func(err error) bool { return err == nil }
	}

	cb := &CircuitBreaker{settings: settings}
	cb.resetWindow(time.Now())
	return cb
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.settings.Name
}

// Execute 在熔断器保护下执行fn
// 熔断打开时直接返回ErrOpenState，fn不会被调用
func (cb *CircuitBreaker) Execute(fn func() error) error {
	generation, err := cb.before()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			cb.after(generation, false)
			panic(r)
		}
	}()

	err = fn()
	cb.after(generation, cb.settings.IsSuccessful(err))
	return err
}

// State 当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, _ := cb.current(time.Now())
	return state
}

// Counts 当前窗口统计
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts
}

func (cb *CircuitBreaker) before() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.current(time.Now())
	switch {
	case state == StateOpen:
		return generation, ErrOpenState
	case state == StateHalfOpen && cb.counts.Requests >= cb.settings.MaxRequests:
		return generation, ErrTooManyRequests
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) after(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.current(now)
	// 请求期间状态已切换，统计属于旧窗口，丢弃
	if generation != before {
		return
	}

	if success {
		cb.counts.TotalSuccesses++
		cb.counts.ConsecutiveSuccesses++
		cb.counts.ConsecutiveFailures = 0
		if state == StateHalfOpen && cb.counts.ConsecutiveSuccesses >= cb.settings.MaxRequests {
			cb.transition(StateClosed, now)
		}
		return
	}

	cb.counts.TotalFailures++
	cb.counts.ConsecutiveFailures++
	cb.counts.ConsecutiveSuccesses = 0
	switch state {
	case StateClosed:
		if cb.settings.ReadyToTrip(cb.counts) {
			cb.transition(StateOpen, now)
		}
	case StateHalfOpen:
		cb.transition(StateOpen, now)
	}
}

func (cb *CircuitBreaker) current(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.resetWindow(now)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.transition(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) transition(to State, now time.Time) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to
	cb.resetWindow(now)

	if to == StateOpen {
		cb.expiry = now.Add(cb.settings.Timeout)
	}

	if cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.settings.Name, from, to)
	}
}

// resetWindow 开启新的统计窗口
func (cb *CircuitBreaker) resetWindow(now time.Time) {
	cb.generation++
	cb.counts = Counts{}

	cb.expiry = time.Time{}
	if cb.state == StateClosed && cb.settings.Interval > 0 {
		cb.expiry = now.Add(cb.settings.Interval)
	}
}

package shared

import "context"

// Transactor 事务边界抽象
// 由infrastructure层实现（GORM / 内存存储），domain与application层只依赖该接口。
// fn收到的ctx携带事务句柄，仓储通过ctx取到同一事务；
// ctx中已有事务时加入外层事务，不再开启新事务。
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 领域事件发布
// 在事务提交后调用;发布失败只记录日志,不影响已提交的业务结果
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

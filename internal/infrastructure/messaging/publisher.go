package messaging

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/shared"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
)

const publishTimeout = 3 * time.Second

type envelopePublisher interface {
	Publish(ctx context.Context, routingKey string, envelope mq.Envelope) error
}

// EventPublisher 把领域事件包装成mq.Envelope发布到RabbitMQ
type EventPublisher struct {
	pub envelopePublisher
}

// NewEventPublisher 创建事件发布者
func NewEventPublisher(pub *mq.Publisher) *EventPublisher {
	return &EventPublisher{pub: pub}
}

// Publish 发布事件
// 请求结束后ctx会被取消,这里脱离请求ctx并单独设置超时
func (p *EventPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	env := mq.NewEnvelope(routingKey, payload)
	if err := p.pub.Publish(ctx, routingKey, env); err != nil {
		metrics.RecordPublish(routingKey, "error")
		zap.L().Warn("事件发布失败",
			zap.String("routing_key", routingKey),
			zap.String("message_id", env.ID),
			zap.Error(err),
		)
		return err
	}
	metrics.RecordPublish(routingKey, "success")
	return nil
}

// NoopPublisher 未启用MQ时使用
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

var (
	_ shared.EventPublisher = (*EventPublisher)(nil)
	_ shared.EventPublisher = NoopPublisher{}
)

// Package mq RabbitMQ消息发布
//
// 借阅事件（借出、归还、下架）在事务提交后发布到topic交换机，
// 下游（通知、统计）按routing key订阅。发布失败不影响主流程。
package mq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope 消息信封
// 统一携带消息ID与发生时间，消费者据此去重和排序
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// NewEnvelope 创建消息信封
func NewEnvelope(eventType string, payload interface{}) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Encode 序列化信封
func (e Envelope) Encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode message %s: %w", e.Type, err)
	}
	return body, nil
}

// Publisher 消息发布者
// amqp.Channel 不是并发安全的，发布时加锁；连接断开后下次发布时重连
type Publisher struct {
	url          string
	exchange     string
	exchangeType string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher 连接RabbitMQ并声明交换机
func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	p := &Publisher{url: url, exchange: exchange, exchangeType: exchangeType}
	if err := p.connect(); err != nil {
		return nil, err
	}

	zap.L().Info("rabbitmq publisher ready",
		zap.String("exchange", exchange),
		zap.String("type", exchangeType),
	)
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(p.exchange, p.exchangeType, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	p.conn = conn
	p.channel = channel
	return nil
}

// Publish 发布消息（持久化投递）
func (p *Publisher) Publish(ctx context.Context, routingKey string, envelope Envelope) error {
	body, err := envelope.Encode()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.channel == nil || p.channel.IsClosed() {
		p.closeLocked()
		if err := p.connect(); err != nil {
			return err
		}
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    envelope.ID,
		Type:         envelope.Type,
		Timestamp:    envelope.OccurredAt,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// Close 关闭通道和连接
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeLocked()
	return nil
}

func (p *Publisher) closeLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

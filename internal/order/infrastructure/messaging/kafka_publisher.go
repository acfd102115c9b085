// Package messaging 订单事件的 Kafka 发布实现
package messaging

import (
	"context"

	"github.com/wyfcoding/medsupply/internal/order/domain"
	"github.com/wyfcoding/medsupply/pkg/mq"
)

// KafkaEventPublisher 基于 Kafka 的订单事件发布器
type KafkaEventPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaEventPublisher 创建订单事件发布器
func NewKafkaEventPublisher(producer *mq.KafkaProducer, topic string) domain.EventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

// PublishOrderPlaced 发布订单创建事件，以订单编号为分区键
func (p *KafkaEventPublisher) PublishOrderPlaced(ctx context.Context, event *domain.OrderPlacedEvent) error {
	return p.producer.SendMessage(ctx, p.topic, event.OrderNo, event)
}

package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/kopstant/lms-backend/internal/models"
)

// EventBus публикует доменные события платформы в обменник событий.
type EventBus struct {
	ch *amqp.Channel
}

// NewEventBus создаёт EventBus поверх открытого канала.
func NewEventBus(ch *amqp.Channel) *EventBus {
	return &EventBus{ch: ch}
}

// PublishCourseUpdated отправляет уведомление об обновлении курса
// в очередь рассылки.
func (b *EventBus) PublishCourseUpdated(note models.CourseUpdatedNote) error {
	return PublishMessage(b.ch, EventsExchange, CourseUpdatedRoutingKey, note)
}

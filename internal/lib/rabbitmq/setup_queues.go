package rabbitmq

// EventsExchange обменник событий платформы.
const EventsExchange = "lms.events"

// Очередь и ключ маршрутизации уведомлений об обновлении курса.
const (
	CourseUpdatedQueue      = "notification.course-updated"
	CourseUpdatedRoutingKey = "course-updated"
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди воркера уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: CourseUpdatedQueue, RoutingKey: CourseUpdatedRoutingKey},
	}
}

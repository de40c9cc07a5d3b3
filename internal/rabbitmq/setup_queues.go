package rabbitmq

// QueueConfig описывает очередь и ее ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Имена очереди и ключа маршрутизации писем восстановления пароля.
const (
	PasswordResetQueue      = "notification.password_reset"
	PasswordResetRoutingKey = "password_reset"
)

// GetNotificationQueues возвращает очереди почтовых уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: PasswordResetQueue, RoutingKey: PasswordResetRoutingKey},
	}
}

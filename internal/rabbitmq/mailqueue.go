package rabbitmq

import "github.com/mobilka/subscription-portal/internal/models"

// ResetMailQueue публикует задания на отправку писем восстановления пароля.
type ResetMailQueue struct {
	publisher *Publisher
}

// NewResetMailQueue создает очередь писем восстановления поверх Publisher.
func NewResetMailQueue(publisher *Publisher) *ResetMailQueue {
	return &ResetMailQueue{publisher: publisher}
}

// PublishResetEmail ставит задание в очередь отправки.
func (q *ResetMailQueue) PublishResetEmail(job models.ResetEmailJob) error {
	return q.publisher.Publish(PasswordResetRoutingKey, job)
}

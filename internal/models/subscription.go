package models

import "time"

// SubscriptionView подписка пользователя вместе с проекцией плана.
// Используется в ответах на subscribe и my-subscription.
type SubscriptionView struct {
	Plan      PlanSummary `json:"plan"`
	Status    string      `json:"status"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
}

// ResetEmailJob задание на отправку письма восстановления пароля,
// публикуется в очередь и потребляется сервисом отправки.
type ResetEmailJob struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

package repository_test

import (
	"github.com/mobilka/subscription-portal/internal/http/middlewarectx"
	"github.com/mobilka/subscription-portal/internal/rabbitmq"
	authservice "github.com/mobilka/subscription-portal/internal/services/auth"
	planservice "github.com/mobilka/subscription-portal/internal/services/plan"
	subscriptionservice "github.com/mobilka/subscription-portal/internal/services/subscription"
	"github.com/mobilka/subscription-portal/internal/storage/repository"
)

// Storage обязан удовлетворять контрактам всех сервисных слоев:
// расхождение сигнатур ломает сборку здесь, а не в точке сборки приложения.
var (
	_ authservice.UserRepository                 = (*repository.Storage)(nil)
	_ planservice.PlanRepository                 = (*repository.Storage)(nil)
	_ subscriptionservice.SubscriptionRepository = (*repository.Storage)(nil)
	_ subscriptionservice.PlanRepository         = (*repository.Storage)(nil)
	_ middlewarectx.UserProvider                 = (*repository.Storage)(nil)

	_ authservice.MailQueue = (*rabbitmq.ResetMailQueue)(nil)
)

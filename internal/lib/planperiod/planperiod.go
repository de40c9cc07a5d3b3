// Package planperiod содержит календарную арифметику сроков тарифных планов.
package planperiod

import (
	"time"

	"github.com/mobilka/subscription-portal/internal/models"
)

// EndDate возвращает дату окончания подписки: ровно одна календарная единица
// плана от даты начала (monthly +1 месяц, quarterly +3 месяца, yearly +1 год).
//
// Перенос через конец месяца идет по правилам time.AddDate: 31 января +1 месяц
// нормализуется в 2 или 3 марта в зависимости от високосности года.
func EndDate(start time.Time, duration string) time.Time {
	switch duration {
	case models.DurationQuarterly:
		return start.AddDate(0, 3, 0)
	case models.DurationYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// Package sl содержит мелкие помощники для структурированного логирования.
package sl

import "log/slog"

// Err оборачивает ошибку в атрибут лога с ключом "error".
// Единый ключ упрощает фильтрацию ошибок в агрегаторе логов.
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}

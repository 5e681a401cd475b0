// Package sl содержит вспомогательные функции для работы с логгером slog:
// единообразное формирование атрибутов для ошибок и имён операций.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to update cache", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Op возвращает slog.Attr с ключом "op" для имени операции в формате "pkg.Func".
func Op(op string) slog.Attr {
	return slog.String("op", op)
}

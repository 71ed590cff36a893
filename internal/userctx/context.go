// Package userctx прокидывает ID аутентифицированного пользователя
// через context.Context между middleware и сервисами.
package userctx

import "context"

// Собственный тип ключа исключает коллизии с другими пакетами.
type ctxKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKey{}).(string)
	return userID, ok
}

// Package userctx carries the authenticated user through the request
// context. Separate from handlers so middleware can use it too.
package userctx

import (
	"context"

	"github.com/mcandela/linkhub/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

func NewContext(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func FromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

package cont

import (
	"EduPortal/entity"
	"context"
)

type ctxKey string

const sessionKey ctxKey = "session"

func PutSession(ctx context.Context, session *entity.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func GetSession(ctx context.Context) *entity.Session {
	s, ok := ctx.Value(sessionKey).(*entity.Session)
	if !ok {
		return nil
	}
	return s
}

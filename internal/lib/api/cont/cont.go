package cont

import (
	"Concierge/entity"
	"context"
	"errors"
)

type ctxKey string

const userAuthKey ctxKey = "user_auth"

func PutUser(c context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(c, userAuthKey, user)
}

func GetUser(c context.Context) (*entity.UserAuth, error) {
	user, ok := c.Value(userAuthKey).(*entity.UserAuth)
	if !ok || user == nil {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

package util

import (
	"context"
	"fmt"

	"github.com/infigaming-com/go-msglog/errors"
)

type ContextKey string

const (
	CorrelationIdKey  ContextKey = "CorrelationId"
	SubscriptionIdKey ContextKey = "SubscriptionId"
)

const (
	ErrCodeValueNotFoundInContext = 10000 + iota
	ErrCodeInvalidValueInContext
)

func ValueToCtx[T any](ctx context.Context, key ContextKey, value T) context.Context {
	return context.WithValue(ctx, key, value)
}

func ValueFromCtx[T any](ctx context.Context, key ContextKey) (T, error) {
	raw := ctx.Value(key)
	if raw == nil {
		return *new(T), errors.NewError(ErrCodeValueNotFoundInContext, fmt.Sprintf("%v not found in context", key), nil)
	}
	value, ok := raw.(T)
	if !ok {
		return *new(T), errors.NewError(ErrCodeInvalidValueInContext, fmt.Sprintf("%v is not of type %T on context", key, *new(T)), nil)
	}
	return value, nil
}

func CorrelationIdToCtx(ctx context.Context, correlationId string) context.Context {
	return ValueToCtx(ctx, CorrelationIdKey, correlationId)
}

func CorrelationIdFromCtx(ctx context.Context) (string, error) {
	return ValueFromCtx[string](ctx, CorrelationIdKey)
}

func SubscriptionIdToCtx(ctx context.Context, subscriptionId string) context.Context {
	return ValueToCtx(ctx, SubscriptionIdKey, subscriptionId)
}

func SubscriptionIdFromCtx(ctx context.Context) (string, error) {
	return ValueFromCtx[string](ctx, SubscriptionIdKey)
}

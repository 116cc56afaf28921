package webcrud

import (
	"context"
	"fmt"
)

// TransformFn — функция преобразования сущности в DTO для выдачи наружу.
type TransformFn[T any, DTO any] func(ctx context.Context, src T) (DTO, error)

// MapSlice — утилита для маппинга слайса через TransformFn.
func MapSlice[T any, DTO any](ctx context.Context, in []T, fn TransformFn[T, DTO]) ([]DTO, error) {
	if fn == nil {
		return nil, fmt.Errorf("transform fn is nil")
	}
	out := make([]DTO, len(in))
	for i := range in {
		dto, err := fn(ctx, in[i])
		if err != nil {
			return nil, err
		}
		out[i] = dto
	}
	return out, nil
}

// Pure — TransformFn из функции без ошибок.
func Pure[T any, DTO any](fn func(T) DTO) TransformFn[T, DTO] {
	return func(_ context.Context, src T) (DTO, error) {
		return fn(src), nil
	}
}

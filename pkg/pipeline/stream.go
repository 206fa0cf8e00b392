package pipeline

import (
	"context"
	"iter"
)

// Stream is a lazily pulled sequence of artifacts. An element carrying a non nil error is the
// last element of the stream.
//
// Sources must be re-iterable: every run of a pipeline ranges over its source again.
type Stream[T any] iter.Seq2[T, error]

// FromSlice returns a re-iterable stream over items.
func FromSlice[T any](items []T) Stream[T] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Reject returns a stream made of err only.
func Reject[T any](err error) Stream[T] {
	return func(yield func(T, error) bool) {
		var zero T

		yield(zero, err)
	}
}

// Collect drains the stream and returns its artifacts in order. It stops on the first error.
func Collect[T any](ctx context.Context, stream Stream[T]) ([]T, error) {
	res := []T{}

	for item, err := range stream {
		if err != nil {
			return nil, err
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		res = append(res, item)
	}

	return res, nil
}

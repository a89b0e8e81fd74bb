package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
	require.Equal(t, errA, errs.Add(errA).Aggregate())

	err := errs.Add(nil, errB).Aggregate()
	require.Equal(t, "Multiple errors:\na\nb", err.Error())
	require.True(t, errors.Is(err, errA))
	require.True(t, errors.Is(err, errB))
}

func TestRunner(t *testing.T) {
	failure := errors.New("worker failed")
	r := NewRunner()
	r.Go(
		NamedRun("waiter", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		RunFunc(func(context.Context) error { return failure }),
	)
	err := r.Wait()
	require.Equal(t, failure, err)
	require.Error(t, r.Context.Err())
}

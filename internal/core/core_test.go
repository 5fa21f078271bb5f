package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricValid(t *testing.T) {
	assert.True(t, MetricInnerProduct.Valid())
	assert.True(t, MetricL2.Valid())
	assert.False(t, Metric(2).Valid())
	assert.False(t, Metric(-1).Valid())
}

func TestMetricBetter(t *testing.T) {
	assert.True(t, MetricInnerProduct.Better(2, 1), "inner product: larger wins")
	assert.False(t, MetricInnerProduct.Better(1, 2))
	assert.True(t, MetricL2.Better(1, 2), "l2: smaller wins")
	assert.False(t, MetricL2.Better(2, 1))
}

func TestMetricWorst(t *testing.T) {
	assert.True(t, math.IsInf(float64(MetricInnerProduct.Worst()), -1))
	assert.True(t, math.IsInf(float64(MetricL2.Worst()), 1))

	// Every finite candidate must beat the sentinel.
	assert.True(t, MetricInnerProduct.Better(-1e30, MetricInnerProduct.Worst()))
	assert.True(t, MetricL2.Better(1e30, MetricL2.Worst()))
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "inner_product", MetricInnerProduct.String())
	assert.Equal(t, "l2", MetricL2.String())
	assert.Equal(t, "unknown", Metric(9).String())
}

func TestErrorKindsUnwrap(t *testing.T) {
	cause := errors.New("disk full")

	ioErr := NewIOError("append", "/tmp/base.fvecs", cause)
	assert.ErrorIs(t, ioErr, cause)
	var eio *ErrIO
	require.ErrorAs(t, ioErr, &eio)
	assert.Equal(t, "append", eio.Operation)

	kernErr := NewKernelError("train", cause)
	assert.ErrorIs(t, kernErr, cause)
	var ek *ErrKernel
	require.ErrorAs(t, kernErr, &ek)

	mismatch := NewBaseLengthMismatchError("/tmp/base.fvecs", 13, 16)
	var em *ErrBaseLengthMismatch
	require.ErrorAs(t, mismatch, &em)
	assert.Equal(t, int64(13), em.Size)
	assert.Contains(t, mismatch.Error(), "not a multiple")

	invalid := NewInvalidArgumentError("dim", "must be positive")
	var ei *ErrInvalidArgument
	require.ErrorAs(t, invalid, &ei)
	assert.Contains(t, invalid.Error(), "dim")
}

package docipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMessageChannel_postQueuesUntilStart(t *testing.T) {
	a, b := NewMessageChannel()
	assert.NotEqual(t, a.ID(), b.ID())

	v := mustValue(t, `one`)
	require.NoError(t, a.PostMessage(v))
	require.NoError(t, a.PostMessage(nil))

	var got []any
	require.NoError(t, b.Start(func(v *structpb.Value) { got = append(got, v.AsInterface()) }))
	assert.Equal(t, []any{`one`, nil}, got)

	require.NoError(t, a.PostMessage(mustValue(t, 2)))
	assert.Equal(t, []any{`one`, nil, float64(2)}, got)

	// the other direction has no handler
	require.NoError(t, b.PostMessage(mustValue(t, `back`)))
	assert.Len(t, got, 3)
}

func TestMessageChannel_postClones(t *testing.T) {
	a, b := NewMessageChannel()
	var got *structpb.Value
	require.NoError(t, b.Start(func(v *structpb.Value) { got = v }))

	v := mustValue(t, map[string]any{`k`: `before`})
	require.NoError(t, a.PostMessage(v))
	v.GetStructValue().Fields[`k`] = structpb.NewStringValue(`after`)
	assert.Equal(t, `before`, got.GetStructValue().Fields[`k`].GetStringValue())
}

func TestMessageChannel_close(t *testing.T) {
	a, b := NewMessageChannel()
	require.NoError(t, a.PostMessage(nil))
	require.NoError(t, b.Close())
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	require.ErrorIs(t, a.PostMessage(nil), ErrPortClosed)
	require.ErrorIs(t, b.Start(func(*structpb.Value) {}), ErrPortClosed)
}

func TestPort_take(t *testing.T) {
	a, b := NewMessageChannel()
	moved, err := a.Take()
	require.NoError(t, err)
	assert.Equal(t, a.ID(), moved.ID())
	assert.True(t, a.Consumed())
	assert.False(t, moved.Consumed())

	_, err = a.Take()
	require.ErrorIs(t, err, ErrPortConsumed)
	require.ErrorIs(t, a.PostMessage(nil), ErrPortConsumed)
	require.ErrorIs(t, a.Close(), ErrPortConsumed)

	var got int
	require.NoError(t, b.Start(func(*structpb.Value) { got++ }))
	require.NoError(t, moved.PostMessage(nil))
	assert.Equal(t, 1, got)

	var nilPort *Port
	assert.True(t, nilPort.Consumed())
	assert.True(t, nilPort.Closed())
}

package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Onboarded(t *testing.T) {
	s := New("acc_1")
	assert.Equal(t, "acc_1", s.AccountID)
	assert.False(t, s.StartedAt.IsZero())
	assert.False(t, s.Onboarded())

	s.SetOnboarded(true)
	assert.True(t, s.Onboarded())
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := New("acc_1")
	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = FromContext(NewContext(context.Background(), nil))
	assert.False(t, ok)
}

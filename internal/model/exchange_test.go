package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCanTransition 测试交换状态机的合法转换
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    ExchangeStatus
		to      ExchangeStatus
		allowed bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusAccepted, StatusCompleted, true},
		{StatusAccepted, StatusRejected, false},
		{StatusAccepted, StatusCancelled, false},
		{StatusRejected, StatusAccepted, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusAccepted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

// TestIsValidStatus 测试状态枚举校验
func TestIsValidStatus(t *testing.T) {
	for _, s := range []ExchangeStatus{StatusPending, StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled} {
		assert.True(t, IsValidStatus(s))
	}
	assert.False(t, IsValidStatus("Open"))
	assert.False(t, IsValidStatus(""))
}

// TestIsParticipant 测试参与方判断
func TestIsParticipant(t *testing.T) {
	e := &Exchange{RequesterID: 3, OwnerID: 7}

	assert.True(t, e.IsParticipant(3))
	assert.True(t, e.IsParticipant(7))
	assert.False(t, e.IsParticipant(5))
}

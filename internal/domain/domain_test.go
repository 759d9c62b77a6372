package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from   ChatRequestStatus
		action ChatAction
		want   ChatRequestStatus
		ok     bool
	}{
		{StatusPending, ActionAccept, StatusAccepted, true},
		{StatusPending, ActionDecline, StatusDeclined, true},
		{StatusPending, ActionClose, "", false},
		{StatusAccepted, ActionClose, StatusClosed, true},
		{StatusAccepted, ActionDecline, "", false},
		{StatusDeclined, ActionAccept, "", false},
		{StatusClosed, ActionAccept, "", false},
	}
	for _, tc := range cases {
		got, ok := Transition(tc.from, tc.action)
		assert.Equal(t, tc.ok, ok, "%s + %s", tc.from, tc.action)
		assert.Equal(t, tc.want, got, "%s + %s", tc.from, tc.action)
	}

	_, ok := ActionFor(StatusPending)
	assert.False(t, ok, "nothing moves a request back to pending")
}

func TestActiveStatuses(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusAccepted.IsActive())
	assert.False(t, StatusDeclined.IsActive())
	assert.False(t, StatusClosed.IsActive())
	assert.False(t, ChatRequestStatus("archived").Valid())
}

func TestPartnerOf(t *testing.T) {
	r := &ChatRequest{CustomerID: 1, CoachID: 2}
	assert.Equal(t, uint(2), r.PartnerOf(1))
	assert.Equal(t, uint(1), r.PartnerOf(2))
	assert.False(t, r.Involves(3))
}

func TestFormDataColumn(t *testing.T) {
	v, err := FormData(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	var f FormData
	require.NoError(t, f.Scan([]byte(`{"income":"5000"}`)))
	assert.Equal(t, FormData{"income": "5000"}, f)

	require.NoError(t, f.Scan(nil))
	assert.Empty(t, f)

	assert.Error(t, f.Scan(42))
	assert.Error(t, f.Scan("not json"))
}

func TestPasswordHashing(t *testing.T) {
	u := &User{}
	assert.Error(t, u.HashPassword("short"))
	require.NoError(t, u.HashPassword("correct-horse"))
	assert.NoError(t, u.ValidatePassword("correct-horse"))
	assert.Error(t, u.ValidatePassword("wrong-horse"))
}

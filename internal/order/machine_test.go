package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
		restock  bool
	}{
		{StatusPending, StatusConfirmed, true, false},
		{StatusPending, StatusDelivered, true, false},
		{StatusConfirmed, StatusShipped, true, false},
		{StatusShipped, StatusConfirmed, false, false},
		{StatusProcessing, StatusPending, false, false},
		{StatusDelivered, StatusProcessing, false, false},
		{StatusPending, StatusCancelled, true, true},
		{StatusShipped, StatusRefund, true, true},
		{StatusDelivered, StatusRefund, false, false},
		{StatusCancelled, StatusPending, false, false},
		{StatusCancelled, StatusRefund, false, false},
		{StatusRefund, StatusCancelled, false, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			p, err := planTransition(tc.from, tc.to)
			if !tc.ok {
				var ite *IllegalTransitionError
				require.ErrorAs(t, err, &ite)
				assert.Equal(t, tc.from, ite.From)
				assert.Equal(t, tc.to, ite.To)
				return
			}
			require.NoError(t, err)
			assert.False(t, p.noop)
			assert.Equal(t, tc.restock, p.restock)
		})
	}
}

func TestSameStatusIsNoop(t *testing.T) {
	for _, s := range Statuses {
		p, err := planTransition(s, s)
		require.NoError(t, err)
		assert.True(t, p.noop, s)
		assert.False(t, p.restock, s)
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, s := range Statuses {
		assert.Equal(t, s.IsTerminal(), len(Allowed(s)) == 0, s)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Cancelled ")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, s)

	_, err = ParseStatus("archived")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

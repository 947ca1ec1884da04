package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanCancel(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{OrderStatusPending, true},
		{OrderStatusPaid, true},
		{OrderStatusProcessing, true},
		{OrderStatusShipped, false},
		{OrderStatusDelivered, false},
		{OrderStatusCancelled, true},
		{OrderStatusReturned, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanCancel(tc.status), "status %q", tc.status)
	}
}

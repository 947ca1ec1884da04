package models

const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
)

const (
	ReturnStatusRequested = "requested"
	ReturnStatusApproved  = "approved"
	ReturnStatusRejected  = "rejected"
	ReturnStatusReceived  = "received"
	ReturnStatusRefunded  = "refunded"
)

// CanCancel reports whether an order in the given status may still be
// cancelled. Shipped and delivered orders are past the point of cancellation;
// everything else, including an already-cancelled order, may proceed (the
// re-cancel case is treated as a no-op by the caller).
func CanCancel(status string) bool {
	return status != OrderStatusShipped && status != OrderStatusDelivered
}

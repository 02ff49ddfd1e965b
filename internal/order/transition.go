package order

// transitionPlan is the set of side effects a status change carries. The
// repository executes the plan inside the same transaction as the status
// update itself.
type transitionPlan struct {
	// releaseStock returns each item's quantity to its product (entering
	// cancelled); reserveStock takes it back out (leaving cancelled).
	releaseStock bool
	reserveStock bool

	// subtractSpend and addSpend adjust customer.total_spent by order.total.
	subtractSpend bool
	addSpend      bool

	setShippedAt   bool
	setDeliveredAt bool
}

// planTransition validates moving o from its current status to newStatus and
// returns the side effects to apply. Same-status transitions are allowed and
// produce an empty plan: cancellation and delivery effects are applied at
// most once, guarded by the current status and the stored timestamps.
func planTransition(o *Order, newStatus Status) (transitionPlan, error) {
	var plan transitionPlan

	if o.Status == newStatus {
		return plan, nil
	}

	// Delivered is terminal: cancellation is only modeled from pre-terminal
	// states, and no forward progression exists past delivery.
	if o.Status == StatusDelivered {
		return plan, ErrInvalidStatusTransition
	}

	if newStatus == StatusCancelled {
		plan.releaseStock = true
		plan.subtractSpend = true
	}
	if o.Status == StatusCancelled {
		plan.reserveStock = true
		plan.addSpend = true
	}

	if newStatus == StatusShipped && o.ShippedAt == nil {
		plan.setShippedAt = true
	}
	if newStatus == StatusDelivered && o.DeliveredAt == nil {
		plan.setDeliveredAt = true
	}

	return plan, nil
}

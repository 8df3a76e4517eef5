package order

// transitions is the full table of legal moves. Forward moves along the fulfilment
// chain may skip stages; cancelled and refund are open from every non-terminal status.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefund},
	StatusConfirmed:  {StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefund},
	StatusProcessing: {StatusShipped, StatusDelivered, StatusCancelled, StatusRefund},
	StatusShipped:    {StatusDelivered, StatusCancelled, StatusRefund},
	StatusDelivered:  nil,
	StatusCancelled:  nil,
	StatusRefund:     nil,
}

// CanTransition reports whether to is reachable from from in one call.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Allowed returns the statuses reachable from s.
func Allowed(s Status) []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

type plan struct {
	noop    bool
	restock bool
}

// planTransition decides what moving an order from -> to entails. Asking for the
// current status is a no-op for every status, terminal ones included.
func planTransition(from, to Status) (plan, error) {
	if from == to {
		return plan{noop: true}, nil
	}
	if !CanTransition(from, to) {
		return plan{}, &IllegalTransitionError{From: from, To: to}
	}
	// stock is taken at checkout, so every exit to cancelled/refund gives it back,
	// pending included.
	return plan{restock: to.restocks()}, nil
}

package order

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusShipped        Status = "shipped"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// Forward-only graph; cancellation is the single side exit and no other
// transition may skip a state.
var validNext = map[Status]map[Status]bool{
	StatusPendingPayment: {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:      {StatusShipped: true, StatusCancelled: true},
	StatusShipped:        {StatusDelivered: true},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	_, ok := validNext[s]
	return ok
}

func (s Status) CanTransitionTo(to Status) bool {
	return validNext[s][to]
}

func (s Status) IsTerminal() bool {
	return len(validNext[s]) == 0
}

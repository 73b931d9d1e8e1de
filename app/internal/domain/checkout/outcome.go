package checkout

type OutcomeKind string

const (
	OutcomeRequiresAuthentication OutcomeKind = "requires_authentication"
	OutcomeProcessing             OutcomeKind = "processing"
	OutcomeSuccess                OutcomeKind = "success"
	OutcomeFailed                 OutcomeKind = "failed"
	OutcomeInFlight               OutcomeKind = "in_flight"
)

// Outcome is the tagged result of a checkout attempt. Only the fields of its
// Kind are set.
type Outcome struct {
	Kind OutcomeKind

	// RequiresAuthentication
	RedirectTo string
	From       string
	Message    string

	// Success
	OrderID int64

	// Failed
	Reason string
}

func RequiresAuthentication(redirectTo, from, message string) Outcome {
	return Outcome{
		Kind:       OutcomeRequiresAuthentication,
		RedirectTo: redirectTo,
		From:       from,
		Message:    message,
	}
}

func Processing() Outcome {
	return Outcome{Kind: OutcomeProcessing}
}

func Success(orderID int64) Outcome {
	return Outcome{Kind: OutcomeSuccess, OrderID: orderID}
}

func Failed(reason string) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason}
}

func InFlight() Outcome {
	return Outcome{Kind: OutcomeInFlight}
}

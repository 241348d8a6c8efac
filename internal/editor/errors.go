package editor

// ValidationReason tags a precondition failure so callers can word the
// message without string matching.
type ValidationReason int

const (
	ReasonNoSelection ValidationReason = iota
	ReasonEmptyPrompt
	ReasonWrongGridCount
	ReasonEditInFlight
	ReasonNoInput
)

// ValidationError reports a rejected operation. Validation happens before
// any external call, so a ValidationError guarantees nothing was mutated.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func errNoSelection() error {
	return &ValidationError{Reason: ReasonNoSelection, Message: "no image selected"}
}

func errEmptyPrompt() error {
	return &ValidationError{Reason: ReasonEmptyPrompt, Message: "a prompt is required"}
}

func errEditInFlight() error {
	return &ValidationError{Reason: ReasonEditInFlight, Message: "an edit is already running for this image"}
}

package domain

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeTolerated
	OutcomeFailure
)

// Outcome classifies one HTTP interaction from the journey's point of view.
// A tolerated failure is an expected business rejection (duplicate apply,
// missing optional endpoint) that counts as a successful interaction.
type Outcome struct {
	Kind   OutcomeKind
	Status int
}

func Success(status int) Outcome   { return Outcome{Kind: OutcomeSuccess, Status: status} }
func Tolerated(status int) Outcome { return Outcome{Kind: OutcomeTolerated, Status: status} }
func Failed(status int) Outcome    { return Outcome{Kind: OutcomeFailure, Status: status} }

func (o Outcome) OK() bool {
	return o.Kind != OutcomeFailure
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return "success"
	case OutcomeTolerated:
		return "tolerated"
	default:
		return "failure"
	}
}

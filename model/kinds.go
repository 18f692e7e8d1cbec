package model

import "fmt"

// Kind identifies the type of a notification. Kinds in the request family have
// accept/reject counterparts and participate in the pending/resolution lifecycle.
// One-way kinds are fire-and-forget.
type Kind string

const (
	// DependencyRequest asks the receiver to enter a care relationship with the sender.
	DependencyRequest Kind = "DEPENDENCY_REQUEST"
	DependencyAccept  Kind = "DEPENDENCY_ACCEPT"
	DependencyReject  Kind = "DEPENDENCY_REJECT"

	// MedicineRequest asks the receiver to let the sender register a medication record.
	MedicineRequest Kind = "MEDICINE_REQUEST"
	MedicineAccept  Kind = "MEDICINE_ACCEPT"
	MedicineReject  Kind = "MEDICINE_REJECT"

	// DependencyDeleteRequest asks the receiver to agree to dissolving an existing care
	// relationship. The identifier of the relationship being deleted is stashed in the
	// ephemeral side channel rather than on the notification itself.
	DependencyDeleteRequest Kind = "DEPENDENCY_DELETE_REQUEST"
	DependencyDeleteAccept  Kind = "DEPENDENCY_DELETE_ACCEPT"
	DependencyDeleteReject  Kind = "DEPENDENCY_DELETE_REJECT"

	// PrescriptionRequest asks the receiver to accept shared prescription information.
	// The notification payload carries the rendered disease name.
	PrescriptionRequest Kind = "PRESCRIPTION_REQUEST"
	PrescriptionAccept  Kind = "PRESCRIPTION_ACCEPT"
	PrescriptionReject  Kind = "PRESCRIPTION_REJECT"

	// PrescriptionDeleteRequest asks the receiver to agree to removing shared
	// prescription information.
	PrescriptionDeleteRequest Kind = "PRESCRIPTION_DELETE_REQUEST"
	PrescriptionDeleteAccept  Kind = "PRESCRIPTION_DELETE_ACCEPT"
	PrescriptionDeleteReject  Kind = "PRESCRIPTION_DELETE_REJECT"

	// DoseReminder is a one-way nudge from a protector to a dependent.
	DoseReminder Kind = "PROTECTOR_TO_DEPENDENT"

	// AnalysisComplete is a one-way notice that a prescription analysis finished.
	AnalysisComplete Kind = "ANALYSIS_COMPLETE"

	// ChatMessage is transient. It is dispatched but never persisted.
	ChatMessage Kind = "CHAT_MESSAGE"
)

// Outcome is the disposition chosen by the receiver of a pending request.
type Outcome string

const (
	OutcomeAccepted Outcome = "accept"
	OutcomeRejected Outcome = "reject"
)

// resolutions maps each request kind to its accept/reject counterparts.
var resolutions = map[Kind][2]Kind{
	DependencyRequest:         {DependencyAccept, DependencyReject},
	MedicineRequest:           {MedicineAccept, MedicineReject},
	DependencyDeleteRequest:   {DependencyDeleteAccept, DependencyDeleteReject},
	PrescriptionRequest:       {PrescriptionAccept, PrescriptionReject},
	PrescriptionDeleteRequest: {PrescriptionDeleteAccept, PrescriptionDeleteReject},
}

// IsRequest returns true if the kind belongs to the request family and therefore has a
// pending/resolution lifecycle.
func (k Kind) IsRequest() bool {
	_, ok := resolutions[k]
	return ok
}

// IsOneWay returns true for informational kinds that bypass the duplicate guard and
// never transition state.
func (k Kind) IsOneWay() bool {
	return k == DoseReminder || k == AnalysisComplete
}

// UsesSideChannel returns true if proposals of this kind stash an auxiliary payload in
// the ephemeral side channel.
func (k Kind) UsesSideChannel() bool {
	return k == DependencyDeleteRequest
}

// Resolution returns the kind recorded when a pending request of kind k is resolved
// with the given outcome.
func (k Kind) Resolution(outcome Outcome) (Kind, error) {
	pair, ok := resolutions[k]
	if !ok {
		return "", fmt.Errorf("kind %s is not resolvable", k)
	}
	switch outcome {
	case OutcomeAccepted:
		return pair[0], nil
	case OutcomeRejected:
		return pair[1], nil
	default:
		return "", fmt.Errorf("unrecognized outcome %q", outcome)
	}
}

package dispatch

import "shopalert/internal/domain/entity"

// OutcomeKind tags the three ways a dispatch can end.
type OutcomeKind string

const (
	// OutcomeSkipped means the gate stopped the dispatch before any side
	// effect: the event is disabled for the shop, no channel is configured,
	// or the topic is outside the known set. Not a failure.
	OutcomeSkipped OutcomeKind = "skipped"

	// OutcomeSent means the record exists and every recipient accepted the
	// message.
	OutcomeSent OutcomeKind = "sent"

	// OutcomeFailed means the record exists and is marked ERROR.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the tagged result of one dispatch. The silent/loud split of the
// pipeline is carried in the type instead of one path returning normally and
// another erroring: a skip is a normal return, a failure carries both the
// terminal record and the cause.
type Outcome struct {
	Kind OutcomeKind

	// Reason is set for skipped outcomes.
	Reason string

	// Record is the terminal alert record for sent and failed outcomes.
	Record *entity.AlertRecord

	// Err is the underlying cause for failed outcomes.
	Err error
}

func skipped(reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Reason: reason}
}

func sent(record *entity.AlertRecord) Outcome {
	return Outcome{Kind: OutcomeSent, Record: record}
}

func failed(record *entity.AlertRecord, err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Record: record, Err: err}
}

package application

import (
	"strings"

	"github.com/example/event-portal/internal/persistence"
)

// Decision is a faculty response to an invitation. It is one of Accept,
// DeclineNotInterested, DeclineSuggestedTopic or DeclineTimeConflict.
type Decision interface {
	// changes validates the decision and returns the update it performs.
	// Every decision rewrites all decline-detail fields so no stale detail survives.
	changes() (InvitationChanges, *ValidationError)
	kind() string
}

// Accept accepts the invitation and clears any prior decline details.
type Accept struct{}

// DeclineNotInterested declines without an alternative.
type DeclineNotInterested struct {
	OptionalQuery *string
}

// DeclineSuggestedTopic declines and proposes another topic.
type DeclineSuggestedTopic struct {
	Topic         string
	OptionalQuery *string
}

// DeclineTimeConflict declines and proposes another time window.
type DeclineTimeConflict struct {
	Start         string
	End           string
	OptionalQuery *string
}

func (Accept) kind() string                { return "accept" }
func (DeclineNotInterested) kind() string  { return "decline_not_interested" }
func (DeclineSuggestedTopic) kind() string { return "decline_suggested_topic" }
func (DeclineTimeConflict) kind() string   { return "decline_time_conflict" }

func (Accept) changes() (InvitationChanges, *ValidationError) {
	return InvitationChanges{
		InviteStatus:       persistence.Set(InviteStatusAccepted),
		RejectionReason:    persistence.Clear[RejectionReason](),
		SuggestedTopic:     persistence.Clear[string](),
		SuggestedTimeStart: persistence.Clear[string](),
		SuggestedTimeEnd:   persistence.Clear[string](),
		OptionalQuery:      persistence.Clear[string](),
	}, nil
}

func (d DeclineNotInterested) changes() (InvitationChanges, *ValidationError) {
	return InvitationChanges{
		InviteStatus:       persistence.Set(InviteStatusDeclined),
		RejectionReason:    persistence.Set(RejectionNotInterested),
		SuggestedTopic:     persistence.Clear[string](),
		SuggestedTimeStart: persistence.Clear[string](),
		SuggestedTimeEnd:   persistence.Clear[string](),
		OptionalQuery:      optionalField(d.OptionalQuery),
	}, nil
}

func (d DeclineSuggestedTopic) changes() (InvitationChanges, *ValidationError) {
	topic := strings.TrimSpace(d.Topic)
	if topic == "" {
		return InvitationChanges{}, NewValidationError("suggestedTopic", "suggestedTopic is required")
	}
	return InvitationChanges{
		InviteStatus:       persistence.Set(InviteStatusDeclined),
		RejectionReason:    persistence.Set(RejectionSuggestedTopic),
		SuggestedTopic:     persistence.Set(topic),
		SuggestedTimeStart: persistence.Clear[string](),
		SuggestedTimeEnd:   persistence.Clear[string](),
		OptionalQuery:      optionalField(d.OptionalQuery),
	}, nil
}

func (d DeclineTimeConflict) changes() (InvitationChanges, *ValidationError) {
	start, end, vErr := normalizeWindow(d.Start, d.End)
	if vErr.HasErrors() {
		return InvitationChanges{}, vErr
	}
	return InvitationChanges{
		InviteStatus:       persistence.Set(InviteStatusDeclined),
		RejectionReason:    persistence.Set(RejectionTimeConflict),
		SuggestedTopic:     persistence.Clear[string](),
		SuggestedTimeStart: persistence.Set(start),
		SuggestedTimeEnd:   persistence.Set(end),
		OptionalQuery:      optionalField(d.OptionalQuery),
	}, nil
}

// normalizeWindow parses a suggested window and re-encodes both bounds as RFC 3339 UTC.
func normalizeWindow(start, end string) (string, string, *ValidationError) {
	vErr := &ValidationError{}
	s, okStart := ParseTimestamp(start)
	e, okEnd := ParseTimestamp(end)
	switch {
	case strings.TrimSpace(start) == "":
		vErr.add("suggestedTimeStart", "suggestedTimeStart is required")
	case !okStart:
		vErr.add("suggestedTimeStart", "suggestedTimeStart must be a valid date and time")
	}
	switch {
	case strings.TrimSpace(end) == "":
		vErr.add("suggestedTimeEnd", "suggestedTimeEnd is required")
	case !okEnd:
		vErr.add("suggestedTimeEnd", "suggestedTimeEnd must be a valid date and time")
	}
	if okStart && okEnd && e.Before(s) {
		vErr.add("suggestedTimeEnd", "suggestedTimeEnd must not be before suggestedTimeStart")
	}
	if vErr.HasErrors() {
		return "", "", vErr
	}
	return FormatTimestamp(s), FormatTimestamp(e), nil
}

func optionalField(value *string) persistence.Field[string] {
	if value == nil {
		return persistence.Clear[string]()
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return persistence.Clear[string]()
	}
	return persistence.Set(trimmed)
}

// ResponseInput is the loosely typed dashboard payload before it is narrowed to a Decision.
type ResponseInput struct {
	InviteStatus       string
	RejectionReason    string
	SuggestedTopic     string
	SuggestedTimeStart string
	SuggestedTimeEnd   string
	OptionalQuery      *string
}

// DecisionFromInput narrows a dashboard payload to a Decision.
func DecisionFromInput(input ResponseInput) (Decision, error) {
	switch InviteStatus(strings.TrimSpace(input.InviteStatus)) {
	case InviteStatusAccepted:
		return Accept{}, nil
	case InviteStatusDeclined:
	case "":
		return nil, NewValidationError("inviteStatus", "inviteStatus is required")
	default:
		return nil, NewValidationError("inviteStatus", "inviteStatus must be Accepted or Declined")
	}

	switch RejectionReason(strings.TrimSpace(input.RejectionReason)) {
	case RejectionNotInterested:
		return DeclineNotInterested{OptionalQuery: input.OptionalQuery}, nil
	case RejectionSuggestedTopic:
		return DeclineSuggestedTopic{Topic: input.SuggestedTopic, OptionalQuery: input.OptionalQuery}, nil
	case RejectionTimeConflict:
		return DeclineTimeConflict{Start: input.SuggestedTimeStart, End: input.SuggestedTimeEnd, OptionalQuery: input.OptionalQuery}, nil
	case "":
		return nil, NewValidationError("rejectionReason", "rejectionReason is required when declining")
	default:
		return nil, NewValidationError("rejectionReason", "rejectionReason must be NotInterested, SuggestedTopic or TimeConflict")
	}
}

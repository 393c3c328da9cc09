package persistence

// FieldOp selects what an update does to a single field.
type FieldOp int

const (
	// OpKeep leaves the stored value untouched. It is the zero value.
	OpKeep FieldOp = iota
	// OpSet replaces the stored value.
	OpSet
	// OpClear removes the stored value.
	OpClear
)

// Field is a single field operation inside a partial update.
type Field[T any] struct {
	op    FieldOp
	value T
}

// Set returns an operation that stores value.
func Set[T any](value T) Field[T] {
	return Field[T]{op: OpSet, value: value}
}

// Clear returns an operation that removes the stored value.
func Clear[T any]() Field[T] {
	return Field[T]{op: OpClear}
}

// Op reports the operation kind.
func (f Field[T]) Op() FieldOp {
	return f.op
}

// Value returns the value carried by a Set operation.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.op == OpSet
}

// ApplyOptional resolves the operation against an optional stored value.
func (f Field[T]) ApplyOptional(current *T) *T {
	switch f.op {
	case OpSet:
		v := f.value
		return &v
	case OpClear:
		return nil
	default:
		return current
	}
}

// ApplyValue resolves the operation against a required stored value. Clear yields the zero value.
func (f Field[T]) ApplyValue(current T) T {
	switch f.op {
	case OpSet:
		return f.value
	case OpClear:
		var zero T
		return zero
	default:
		return current
	}
}

// MapField converts the carried value while preserving the operation.
func MapField[T, U any](f Field[T], fn func(T) U) Field[U] {
	out := Field[U]{op: f.op}
	if f.op == OpSet {
		out.value = fn(f.value)
	}
	return out
}

// InvitationPatch lists the per-field operations of a partial invitation update.
// Identity, ownership and the invite token are not patchable.
type InvitationPatch struct {
	Title              Field[string]
	Place              Field[string]
	RoomID             Field[string]
	RoomName           Field[string]
	Description        Field[string]
	StartTime          Field[string]
	EndTime            Field[string]
	Status             Field[string]
	InviteStatus       Field[string]
	RejectionReason    Field[string]
	SuggestedTopic     Field[string]
	SuggestedTimeStart Field[string]
	SuggestedTimeEnd   Field[string]
	OptionalQuery      Field[string]
	TravelStatus       Field[string]
}

// Apply returns a copy of current with every operation resolved.
func (p InvitationPatch) Apply(current Invitation) Invitation {
	next := current
	next.Title = p.Title.ApplyValue(current.Title)
	next.Place = p.Place.ApplyValue(current.Place)
	next.RoomID = p.RoomID.ApplyValue(current.RoomID)
	next.RoomName = p.RoomName.ApplyValue(current.RoomName)
	next.Description = p.Description.ApplyOptional(current.Description)
	next.StartTime = p.StartTime.ApplyValue(current.StartTime)
	next.EndTime = p.EndTime.ApplyValue(current.EndTime)
	next.Status = p.Status.ApplyValue(current.Status)
	next.InviteStatus = p.InviteStatus.ApplyValue(current.InviteStatus)
	next.RejectionReason = p.RejectionReason.ApplyOptional(current.RejectionReason)
	next.SuggestedTopic = p.SuggestedTopic.ApplyOptional(current.SuggestedTopic)
	next.SuggestedTimeStart = p.SuggestedTimeStart.ApplyOptional(current.SuggestedTimeStart)
	next.SuggestedTimeEnd = p.SuggestedTimeEnd.ApplyOptional(current.SuggestedTimeEnd)
	next.OptionalQuery = p.OptionalQuery.ApplyOptional(current.OptionalQuery)
	next.TravelStatus = p.TravelStatus.ApplyOptional(current.TravelStatus)
	return next
}

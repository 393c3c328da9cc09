// Package scheduler detects double-booked session slots.
package scheduler

import (
	"strings"
	"time"
)

// Slot is one scheduled session as seen by conflict detection.
type Slot struct {
	ID           string
	Participants []string
	RoomID       string
	Start        time.Time
	End          time.Time
}

// ConflictType describes the type of conflict detected between slots.
type ConflictType string

const (
	// ConflictTypeParticipant indicates a participant is double-booked.
	ConflictTypeParticipant ConflictType = "participant"
	// ConflictTypeRoom indicates a room is double-booked.
	ConflictTypeRoom ConflictType = "room"
)

// Conflict details an overlapping slot relation that callers can present to users.
type Conflict struct {
	WithSlotID  string
	Type        ConflictType
	Participant string
	RoomID      string
}

// Overlaps reports whether the half-open intervals [Start, End) of a and b intersect.
func Overlaps(a, b Slot) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// DetectConflicts lists the conflicts of candidate against existing slots, in
// existing order. Participants match case-insensitively. Slots with an empty
// or inverted window never conflict.
func DetectConflicts(existing []Slot, candidate Slot) []Conflict {
	if !candidate.End.After(candidate.Start) {
		return nil
	}

	participants := make(map[string]struct{}, len(candidate.Participants))
	for _, p := range candidate.Participants {
		if key := normalize(p); key != "" {
			participants[key] = struct{}{}
		}
	}
	room := strings.TrimSpace(candidate.RoomID)

	var conflicts []Conflict
	for _, other := range existing {
		if other.ID == candidate.ID || !other.End.After(other.Start) || !Overlaps(candidate, other) {
			continue
		}
		for _, p := range other.Participants {
			if _, ok := participants[normalize(p)]; ok {
				conflicts = append(conflicts, Conflict{WithSlotID: other.ID, Type: ConflictTypeParticipant, Participant: p})
			}
		}
		if room != "" && strings.TrimSpace(other.RoomID) == room {
			conflicts = append(conflicts, Conflict{WithSlotID: other.ID, Type: ConflictTypeRoom, RoomID: room})
		}
	}
	return conflicts
}

func normalize(participant string) string {
	return strings.ToLower(strings.TrimSpace(participant))
}

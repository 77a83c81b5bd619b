package domain

import "context"

// RSVPOutcome is the result of an RSVP transition on an (event, user) pair.
type RSVPOutcome int

const (
	// RSVPJoined means the pair moved from not joined to joined.
	RSVPJoined RSVPOutcome = iota + 1
	// RSVPAlreadyJoined means join was a no-op.
	RSVPAlreadyJoined
	// RSVPCancelled means the pair moved from joined to not joined.
	RSVPCancelled
	// RSVPNotJoined means cancel was a no-op.
	RSVPNotJoined
)

// Changed reports whether the transition mutated the participant set.
func (o RSVPOutcome) Changed() bool {
	return o == RSVPJoined || o == RSVPCancelled
}

// Joined reports the pair's state after the transition.
func (o RSVPOutcome) Joined() bool {
	return o == RSVPJoined || o == RSVPAlreadyJoined
}

// String returns a stable machine-readable name.
func (o RSVPOutcome) String() string {
	switch o {
	case RSVPJoined:
		return "joined"
	case RSVPAlreadyJoined:
		return "already_joined"
	case RSVPCancelled:
		return "cancelled"
	case RSVPNotJoined:
		return "not_joined"
	default:
		return "unknown"
	}
}

// Message returns the user-facing message for the outcome.
func (o RSVPOutcome) Message() string {
	switch o {
	case RSVPJoined:
		return "You have successfully RSVP'd to this event."
	case RSVPAlreadyJoined:
		return "You have already RSVP'd to this event."
	case RSVPCancelled:
		return "Your RSVP has been cancelled."
	case RSVPNotJoined:
		return "You have not RSVP'd to this event."
	default:
		return ""
	}
}

// ParticipantRepository is the only writer of the event/user participant set.
// Add and Remove must be atomic: Add inserts only if absent and Remove deletes
// only if present, each reporting whether the set changed.
type ParticipantRepository interface {
	Add(ctx context.Context, eventID, userID string) (added bool, err error)
	Remove(ctx context.Context, eventID, userID string) (removed bool, err error)
	IsParticipant(ctx context.Context, eventID, userID string) (bool, error)
	ListEventsByUser(ctx context.Context, userID string) ([]*Event, error)
	ListUsersByEvent(ctx context.Context, eventID string) ([]*User, error)
	Count(ctx context.Context) (int, error)
}

// RSVPService governs joining and leaving events.
type RSVPService interface {
	Join(ctx context.Context, caller *Caller, eventID string) (RSVPOutcome, error)
	Cancel(ctx context.Context, caller *Caller, eventID string) (RSVPOutcome, error)
	Status(ctx context.Context, caller *Caller, eventID string) (joined bool, err error)
	ListMyEvents(ctx context.Context, caller *Caller) ([]*Event, error)
}

package models

import (
	"fmt"
	"time"
)

// Role names the kind of actor a session authenticates. Candidate and
// admin are mutually exclusive.
type Role int

const (
	RoleCandidate Role = iota
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleCandidate:
		return "candidate"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Session identifies one authenticated actor by an opaque random
// identifier. It is invalid once the clock passes ExpiresAt, regardless of
// storage presence.
type Session struct {
	ID        string
	Role      Role
	ActorID   int64
	IP        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its TTL at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Actor is the tagged union of authenticated identities. Exactly one of
// Candidate/Admin is non-nil, matching Role.
type Actor struct {
	Role      Role
	Candidate *Candidate
	Admin     *Admin
}

// ID returns the numeric identity of the actor. An Actor whose Role does
// not match its payload is a programmer error and panics.
func (a *Actor) ID() int64 {
	switch a.Role {
	case RoleCandidate:
		return a.Candidate.ID
	case RoleAdmin:
		return a.Admin.ID
	default:
		panic(fmt.Sprintf("unknown role %v", a.Role))
	}
}

// PublicKey returns the actor's public key.
func (a *Actor) PublicKey() string {
	switch a.Role {
	case RoleCandidate:
		return a.Candidate.PublicKey
	case RoleAdmin:
		return a.Admin.PublicKey
	default:
		panic(fmt.Sprintf("unknown role %v", a.Role))
	}
}

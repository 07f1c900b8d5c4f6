// Package sales defines the core domain types for vendas.
package sales

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation errors.
var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrInvalidRole       = errors.New("role must be 'sdr', 'salesperson' or 'supervisor'")
	ErrInvalidKind       = errors.New("kind must be 'meeting' or 'sale'")
	ErrInvalidOutcome    = errors.New("outcome is not valid for this record kind")
	ErrNegativeValue     = errors.New("value cannot be negative")
	ErrMissingActor      = errors.New("actor id is required")
	ErrInvalidSupervisor = errors.New("only salespeople and SDRs can report to a supervisor")
)

// Domain errors.
var (
	ErrActorNotFound  = errors.New("actor not found")
	ErrRecordNotFound = errors.New("record not found")
	ErrAlreadyLinked  = errors.New("record is already linked")
)

// Role is the function an actor has in the sales team.
type Role string

const (
	RoleSDR         Role = "sdr"
	RoleSalesperson Role = "salesperson"
	RoleSupervisor  Role = "supervisor"
)

// Roles lists every role in display order.
var Roles = []Role{RoleSDR, RoleSalesperson, RoleSupervisor}

// ParseRole parses a case-insensitive role name.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleSDR:
		return RoleSDR, nil
	case RoleSalesperson:
		return RoleSalesperson, nil
	case RoleSupervisor:
		return RoleSupervisor, nil
	default:
		return "", ErrInvalidRole
	}
}

// Kind distinguishes meetings from sales.
type Kind string

const (
	KindMeeting Kind = "meeting"
	KindSale    Kind = "sale"
)

// ParseKind parses a record kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMeeting:
		return KindMeeting, nil
	case KindSale:
		return KindSale, nil
	default:
		return "", ErrInvalidKind
	}
}

// Outcome is a meeting result or a sale status, depending on the record kind.
type Outcome string

// Meeting outcomes.
const (
	OutcomeScheduled Outcome = "scheduled"
	OutcomeAttended  Outcome = "attended"
	OutcomeConverted Outcome = "converted"
	OutcomeNoShow    Outcome = "no_show"
	OutcomeCancelled Outcome = "cancelled"
)

// Sale statuses.
const (
	OutcomePending  Outcome = "pending"
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// ValidFor returns true if the outcome applies to records of kind k.
func (o Outcome) ValidFor(k Kind) bool {
	switch k {
	case KindMeeting:
		switch o {
		case OutcomeScheduled, OutcomeAttended, OutcomeConverted, OutcomeNoShow, OutcomeCancelled:
			return true
		}
	case KindSale:
		switch o {
		case OutcomePending, OutcomeApproved, OutcomeRejected:
			return true
		}
	}
	return false
}

// Actor is a member of the sales team.
type Actor struct {
	ID           string
	Name         string
	Role         Role
	SupervisorID *string // set for members of a supervised team
	Active       bool
	CreatedAt    time.Time
}

// NewActor creates an active Actor with validation.
func NewActor(name, role string, supervisorID *string) (*Actor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}

	if supervisorID != nil && r == RoleSupervisor {
		return nil, ErrInvalidSupervisor
	}

	return &Actor{
		ID:           uuid.NewString(),
		Name:         name,
		Role:         r,
		SupervisorID: supervisorID,
		Active:       true,
		CreatedAt:    time.Now(),
	}, nil
}

// Record is a dated, categorized event owned by one actor.
//
// For meetings ActorID is the SDR who booked it and CounterpartID the
// salesperson holding it. For sales ActorID is the salesperson and
// CounterpartID the SDR credited for the lead, once linked.
type Record struct {
	ID            string
	Kind          Kind
	ActorID       string
	CounterpartID *string
	LinkedID      *string // sale <-> meeting link set by the linker
	Outcome       Outcome
	Value         decimal.Decimal
	OccurredAt    time.Time
	CreatedAt     time.Time
}

// NewMeeting creates a scheduled meeting booked by sdrID for salespersonID.
func NewMeeting(sdrID, salespersonID string, at time.Time) (*Record, error) {
	if sdrID == "" || salespersonID == "" {
		return nil, ErrMissingActor
	}
	return &Record{
		ID:            uuid.NewString(),
		Kind:          KindMeeting,
		ActorID:       sdrID,
		CounterpartID: &salespersonID,
		Outcome:       OutcomeScheduled,
		Value:         decimal.Zero,
		OccurredAt:    at,
		CreatedAt:     time.Now(),
	}, nil
}

// NewSale creates a pending sale closed by salespersonID.
func NewSale(salespersonID string, value decimal.Decimal, at time.Time) (*Record, error) {
	if salespersonID == "" {
		return nil, ErrMissingActor
	}
	if value.IsNegative() {
		return nil, ErrNegativeValue
	}
	return &Record{
		ID:         uuid.NewString(),
		Kind:       KindSale,
		ActorID:    salespersonID,
		Outcome:    OutcomePending,
		Value:      value,
		OccurredAt: at,
		CreatedAt:  time.Now(),
	}, nil
}

// ParseValue parses a monetary amount such as "1500.50".
func ParseValue(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing value %q: %w", s, err)
	}
	if v.IsNegative() {
		return decimal.Zero, ErrNegativeValue
	}
	return v, nil
}

// SetOutcome validates and applies a new outcome.
func (r *Record) SetOutcome(o Outcome) error {
	if !o.ValidFor(r.Kind) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidOutcome, o, r.Kind)
	}
	r.Outcome = o
	return nil
}

// IsMeeting returns true if the record is a meeting.
func (r *Record) IsMeeting() bool {
	return r.Kind == KindMeeting
}

// IsSale returns true if the record is a sale.
func (r *Record) IsSale() bool {
	return r.Kind == KindSale
}

// IsConvertedMeeting returns true for meetings that resulted in a sale.
func (r *Record) IsConvertedMeeting() bool {
	return r.IsMeeting() && r.Outcome == OutcomeConverted
}

// IsApprovedSale returns true for sales that have been approved.
func (r *Record) IsApprovedSale() bool {
	return r.IsSale() && r.Outcome == OutcomeApproved
}

// IsLinked returns true if the record has been paired by the linker.
func (r *Record) IsLinked() bool {
	return r.LinkedID != nil
}

// Counterpart returns the counterpart id or an empty string.
func (r *Record) Counterpart() string {
	if r.CounterpartID == nil {
		return ""
	}
	return *r.CounterpartID
}

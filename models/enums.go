package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Enums are stored upper-case and travel lower-case on the wire. Each type owns
// its conversion so the case change never has to be repeated at call sites.

// Role is the privilege level of a user. Ordering (highest first):
// admin > program_manager = rd_manager > manager > employee.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleProgramManager Role = "PROGRAM_MANAGER"
	RoleRDManager      Role = "RD_MANAGER"
	RoleManager        Role = "MANAGER"
	RoleEmployee       Role = "EMPLOYEE"
)

var validRoles = map[Role]bool{
	RoleAdmin:          true,
	RoleProgramManager: true,
	RoleRDManager:      true,
	RoleManager:        true,
	RoleEmployee:       true,
}

func ParseRole(wire string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(wire)))
	if !validRoles[r] {
		return "", fmt.Errorf("invalid role %q", wire)
	}
	return r, nil
}

func (r Role) Wire() string { return strings.ToLower(string(r)) }

func (r Role) MarshalJSON() ([]byte, error) { return json.Marshal(r.Wire()) }

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ProjectStatus of a project. "on-hold" on the wire maps to ON_HOLD in storage.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectCancelled ProjectStatus = "CANCELLED"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
)

var validProjectStatuses = map[ProjectStatus]bool{
	ProjectActive:    true,
	ProjectCompleted: true,
	ProjectCancelled: true,
	ProjectOnHold:    true,
}

func ParseProjectStatus(wire string) (ProjectStatus, error) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(wire)), "-", "_")
	s := ProjectStatus(normalized)
	if !validProjectStatuses[s] {
		return "", fmt.Errorf("invalid project status %q", wire)
	}
	return s, nil
}

func (s ProjectStatus) Wire() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), "_", "-")
}

func (s ProjectStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.Wire()) }

func (s *ProjectStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseProjectStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Priority applies to projects and notifications.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

var validPriorities = map[Priority]bool{
	PriorityLow:      true,
	PriorityMedium:   true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

func ParsePriority(wire string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(wire)))
	if !validPriorities[p] {
		return "", fmt.Errorf("invalid priority %q", wire)
	}
	return p, nil
}

func (p Priority) Wire() string { return strings.ToLower(string(p)) }

func (p Priority) MarshalJSON() ([]byte, error) { return json.Marshal(p.Wire()) }

func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// InitiativeStatus of an over-and-beyond initiative. Anything other than
// COMPLETED counts toward the over-and-beyond load.
type InitiativeStatus string

const (
	InitiativeOpen       InitiativeStatus = "OPEN"
	InitiativeInProgress InitiativeStatus = "IN_PROGRESS"
	InitiativeCompleted  InitiativeStatus = "COMPLETED"
	InitiativeCancelled  InitiativeStatus = "CANCELLED"
)

var validInitiativeStatuses = map[InitiativeStatus]bool{
	InitiativeOpen:       true,
	InitiativeInProgress: true,
	InitiativeCompleted:  true,
	InitiativeCancelled:  true,
}

func ParseInitiativeStatus(wire string) (InitiativeStatus, error) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(wire)), "-", "_")
	s := InitiativeStatus(normalized)
	if !validInitiativeStatuses[s] {
		return "", fmt.Errorf("invalid initiative status %q", wire)
	}
	return s, nil
}

func (s InitiativeStatus) Wire() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), "_", "-")
}

func (s InitiativeStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.Wire()) }

func (s *InitiativeStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseInitiativeStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

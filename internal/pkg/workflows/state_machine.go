package workflows

import "tidechain-backend/internal/domain"

// StateMachine enforces project status transitions.
type StateMachine struct {
	allowedTransitions map[domain.ProjectStatus][]domain.ProjectStatus
}

// NewProjectStateMachine returns the verification lifecycle: a pending project
// is either verified or rejected by an admin; both outcomes are terminal.
func NewProjectStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[domain.ProjectStatus][]domain.ProjectStatus{
			domain.ProjectPending:  {domain.ProjectVerified, domain.ProjectRejected},
			domain.ProjectVerified: {},
			domain.ProjectRejected: {},
		},
	}
}

// CanTransition checks if a status transition is allowed.
func (sm *StateMachine) CanTransition(from, to domain.ProjectStatus) bool {
	for _, allowedTo := range sm.allowedTransitions[from] {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status.
func (sm *StateMachine) GetAllowedTransitions(from domain.ProjectStatus) []domain.ProjectStatus {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []domain.ProjectStatus{}
	}
	return allowed
}

// IsTerminal reports whether no transition leaves status.
func (sm *StateMachine) IsTerminal(status domain.ProjectStatus) bool {
	allowed, exists := sm.allowedTransitions[status]
	return exists && len(allowed) == 0
}

// IsTarget reports whether some state can transition into status. Only
// target states may be written by an update.
func (sm *StateMachine) IsTarget(status domain.ProjectStatus) bool {
	for _, targets := range sm.allowedTransitions {
		for _, t := range targets {
			if t == status {
				return true
			}
		}
	}
	return false
}

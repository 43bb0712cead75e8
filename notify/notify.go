// Package notify defines how approval and generation events are announced.
package notify

import (
	"context"

	"rampup/store"
)

// Notifier announces plan lifecycle events to an external channel.
type Notifier interface {
	// PlanApproved announces that a plan was approved and committed.
	PlanApproved(ctx context.Context, projectName, roleName, approvedBy string, result *store.ApproveResult) error

	// PlanRejected announces that a staged draft was discarded.
	PlanRejected(ctx context.Context, projectName, roleName, rejectedBy string) error
}

// Nop is a Notifier that does nothing. Used when no channel is configured.
type Nop struct{}

func (Nop) PlanApproved(context.Context, string, string, string, *store.ApproveResult) error {
	return nil
}

func (Nop) PlanRejected(context.Context, string, string, string) error { return nil }

package workorder

import (
	"workorder-service/internal/model"
)

// validTransitions is the work order state machine:
//
//	PENDING -> IN_PROGRESS -> DELIVERED <-> IN_REVISION -> COMPLETED
//
// with CANCELLED reachable from every non-terminal state and DISPUTED as a
// side state that freezes the order until an admin resolves it. Approving a
// non-final milestone delivery sends the order back to IN_PROGRESS for the
// next phase. COMPLETED and CANCELLED are terminal.
var validTransitions = map[model.WorkOrderStatus][]model.WorkOrderStatus{
	model.WorkOrderPending: {
		model.WorkOrderAccepted,
		model.WorkOrderInProgress,
		model.WorkOrderCancelled,
		model.WorkOrderDisputed,
	},
	model.WorkOrderAccepted: {
		model.WorkOrderInProgress,
		model.WorkOrderCancelled,
		model.WorkOrderDisputed,
	},
	model.WorkOrderInProgress: {
		model.WorkOrderDelivered,
		model.WorkOrderCancelled,
		model.WorkOrderDisputed,
	},
	model.WorkOrderDelivered: {
		model.WorkOrderInProgress,
		model.WorkOrderInRevision,
		model.WorkOrderCompleted,
		model.WorkOrderCancelled,
		model.WorkOrderDisputed,
	},
	model.WorkOrderInRevision: {
		model.WorkOrderInProgress,
		model.WorkOrderDelivered,
		model.WorkOrderCompleted,
		model.WorkOrderCancelled,
		model.WorkOrderDisputed,
	},
	// DISPUTED only moves where the admin resolution sends it.
	model.WorkOrderDisputed: {
		model.WorkOrderCompleted,
		model.WorkOrderCancelled,
	},
	model.WorkOrderCompleted: {},
	model.WorkOrderCancelled: {},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to model.WorkOrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition out of the status exists.
func IsTerminal(s model.WorkOrderStatus) bool {
	return len(validTransitions[s]) == 0
}

package mqhandler

import (
	"strings"
	"testing"

	mqcontracts "workorder-service/contracts/mq"
)

func TestMessageForCoversAllRoutingKeys(t *testing.T) {
	keys := []string{
		mqcontracts.RoutingWorkOrderCreated,
		mqcontracts.RoutingWorkOrderStarted,
		mqcontracts.RoutingWorkOrderCancelled,
		mqcontracts.RoutingWorkOrderCompleted,
		mqcontracts.RoutingWorkOrderDisputed,
		mqcontracts.RoutingWorkOrderResolved,
		mqcontracts.RoutingDeliverySubmitted,
		mqcontracts.RoutingDeliveryApproved,
		mqcontracts.RoutingDeliveryRevision,
		mqcontracts.RoutingEscrowFunded,
		mqcontracts.RoutingEscrowReleased,
		mqcontracts.RoutingEscrowRefunded,
	}

	payload := mqcontracts.WorkOrderEventPayload{WorkOrderID: 42, AmountCents: 1234}
	for _, key := range keys {
		msg := messageFor(key, payload)
		if msg == "" {
			t.Errorf("no message for routing key %s", key)
			continue
		}
		if !strings.Contains(msg, "42") {
			t.Errorf("message for %s does not mention the work order: %q", key, msg)
		}
	}

	if msg := messageFor("unknown.key", payload); msg != "" {
		t.Errorf("unknown routing key produced a message: %q", msg)
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{1234, "$12.34"},
		{100_00, "$100.00"},
	}
	for _, tc := range cases {
		if got := formatCents(tc.cents); got != tc.want {
			t.Errorf("formatCents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

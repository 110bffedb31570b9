package workorder

import (
	"fmt"

	"workorder-service/internal/model"
)

// Ledger arithmetic for the escrow attached to a work order. Every mutation
// re-checks the invariant 0 <= released <= funded <= total before it takes
// effect; a violating mutation is rejected and the escrow is left untouched.

// CheckLedgerInvariant verifies the numeric invariant on an escrow.
func CheckLedgerInvariant(e *model.Escrow) error {
	if e.ReleasedAmountCents < 0 {
		return fmt.Errorf("escrow %d: released amount %d is negative", e.ID, e.ReleasedAmountCents)
	}
	if e.ReleasedAmountCents > e.FundedAmountCents {
		return fmt.Errorf("escrow %d: released %d exceeds funded %d", e.ID, e.ReleasedAmountCents, e.FundedAmountCents)
	}
	if e.FundedAmountCents > e.TotalAmountCents {
		return fmt.Errorf("escrow %d: funded %d exceeds total %d", e.ID, e.FundedAmountCents, e.TotalAmountCents)
	}
	return nil
}

// fundFull moves the escrow from PENDING to FUNDED in one step. Partial
// funding is not exposed as a client action; the arithmetic below still keeps
// funded as an independent field so it could be.
func fundFull(e *model.Escrow) error {
	if e.Status != model.EscrowPending {
		return InvalidState("fundEscrow", fmt.Sprintf("escrow is %s, expected %s", e.Status, model.EscrowPending))
	}
	e.FundedAmountCents = e.TotalAmountCents
	e.Status = model.EscrowFunded
	return CheckLedgerInvariant(e)
}

// release moves amountCents from funded into released. The escrow becomes
// RELEASED when everything funded has been released, PARTIALLY_RELEASED
// otherwise. A release that would break the invariant is rejected without
// mutating the escrow.
func release(e *model.Escrow, amountCents int64) error {
	if amountCents < 0 {
		return Validation("releaseEscrow", "release amount is negative")
	}
	switch e.Status {
	case model.EscrowFunded, model.EscrowPartiallyReleased:
	default:
		return InvalidState("releaseEscrow", fmt.Sprintf("escrow is %s, expected funded", e.Status))
	}
	if e.ReleasedAmountCents+amountCents > e.FundedAmountCents {
		return InvalidState("releaseEscrow", fmt.Sprintf(
			"release of %d cents exceeds remaining %d", amountCents, e.RemainingCents()))
	}

	e.ReleasedAmountCents += amountCents
	if e.ReleasedAmountCents == e.FundedAmountCents {
		e.Status = model.EscrowReleased
	} else {
		e.Status = model.EscrowPartiallyReleased
	}
	return CheckLedgerInvariant(e)
}

// releaseRemainder releases everything still held. Used on completion.
func releaseRemainder(e *model.Escrow) (int64, error) {
	remainder := e.RemainingCents()
	if err := release(e, remainder); err != nil {
		return 0, err
	}
	return remainder, nil
}

// refund returns the unreleased remainder to the client on cancellation and
// parks the escrow in REFUNDED. Already-released funds stay released. An
// unfunded PENDING or fully RELEASED escrow has nothing to refund and keeps
// its status.
func refund(e *model.Escrow) (int64, error) {
	switch e.Status {
	case model.EscrowPending, model.EscrowReleased:
		return 0, nil
	case model.EscrowFunded, model.EscrowPartiallyReleased:
	default:
		return 0, InvalidState("refundEscrow", fmt.Sprintf("escrow is %s, nothing to refund", e.Status))
	}

	remainder := e.RemainingCents()
	// The refunded remainder leaves the ledger: funded shrinks to what was
	// actually paid out.
	e.FundedAmountCents = e.ReleasedAmountCents
	e.Status = model.EscrowRefunded
	if err := CheckLedgerInvariant(e); err != nil {
		return 0, err
	}
	return remainder, nil
}

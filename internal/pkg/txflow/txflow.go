// Package txflow is the shared shape of every user-initiated chain action:
// sign, confirm, interpret, then mirror to the backend. The chain is
// authoritative and irreversible from the client; the backend is a secondary
// projection that can fall behind. Nothing here ever rolls a chain action
// back.
package txflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/suidrift/suidrift/internal/pkg/chain"
	"github.com/suidrift/suidrift/internal/pkg/txresult"
)

// ErrNoWallet fails the local-precondition step when no wallet is attached.
var ErrNoWallet = errors.New("no wallet attached")

// ErrWalletRejected covers signing refusal and every other pre-confirmation
// failure. Terminal for the attempt; no backend call may follow.
var ErrWalletRejected = errors.New("transaction rejected by wallet")

// ErrUnresolvedCreation means the chain accepted a creation transaction but
// no source yielded the new object id. Distinct from on-chain rejection:
// stake has moved, so the user gets verify/contact-support messaging, not a
// retry prompt.
var ErrUnresolvedCreation = errors.New("could not resolve created game id")

// ChainError is an on-chain-confirmed failure: the wallet step succeeded but
// the effects report failure. Treated like a rejection for messaging.
type ChainError struct {
	Reason string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("transaction failed on chain: %s", e.Reason)
}

// DesyncError wraps a backend write that failed after the chain already
// advanced. The two systems are not transactionally linked; retrying could
// double-submit, so callers surface a reconciliation-needed message instead.
type DesyncError struct {
	Err error
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("chain updated but backend write failed: %v", e.Err)
}

func (e *DesyncError) Unwrap() error {
	return e.Err
}

// Execute submits tx through the wallet and interprets the confirmed block.
// The returned block is non-nil only on confirmed success.
func Execute(ctx context.Context, wallet chain.Wallet, tx *chain.Transaction) (*txresult.TransactionBlock, error) {
	block, err := wallet.SignAndExecute(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWalletRejected, err)
	}

	if !txresult.IsSuccess(block) {
		return nil, &ChainError{Reason: txresult.FailureReason(block)}
	}

	return block, nil
}

// Mirror runs the single post-success backend write, translating failure
// into a DesyncError.
func Mirror(write func() error) error {
	err := write()
	if err != nil {
		return &DesyncError{Err: err}
	}

	return nil
}

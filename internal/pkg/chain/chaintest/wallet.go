// Package chaintest provides a scripted wallet for flow tests: every
// submitted transaction is recorded, and the confirmed block is whatever the
// test staged.
package chaintest

import (
	"context"
	"sync"

	"github.com/suidrift/suidrift/internal/pkg/chain"
	"github.com/suidrift/suidrift/internal/pkg/txresult"
)

type Wallet struct {
	Addr string

	// Err, when set, fails SignAndExecute outright (the wallet-rejection
	// case). Otherwise Block is returned as the confirmed result.
	Err   error
	Block *txresult.TransactionBlock

	mu        sync.Mutex
	submitted []*chain.Transaction
}

func (w *Wallet) Address() string {
	return w.Addr
}

func (w *Wallet) SignAndExecute(_ context.Context, tx *chain.Transaction) (*txresult.TransactionBlock, error) {
	w.mu.Lock()
	w.submitted = append(w.submitted, tx)
	w.mu.Unlock()

	if w.Err != nil {
		return nil, w.Err
	}

	return w.Block, nil
}

// Submitted returns every transaction this wallet has seen, in order.
func (w *Wallet) Submitted() []*chain.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]*chain.Transaction{}, w.submitted...)
}

// Success is a confirmed block with no creation records.
func Success() *txresult.TransactionBlock {
	return &txresult.TransactionBlock{
		Effects: &txresult.Effects{
			Status: txresult.Status{Status: "success"},
		},
	}
}

// SuccessWithEvent is a confirmed block announcing a created game through
// its emitted event.
func SuccessWithEvent(eventType string, gameID string) *txresult.TransactionBlock {
	block := Success()
	block.Events = []txresult.Event{
		{Type: eventType, ParsedJSON: txresult.EventPayload{GameID: gameID}},
	}

	return block
}

// Failure is a block the chain confirmed as failed.
func Failure(reason string) *txresult.TransactionBlock {
	return &txresult.TransactionBlock{
		Effects: &txresult.Effects{
			Status: txresult.Status{Status: "failure", Error: reason},
		},
	}
}

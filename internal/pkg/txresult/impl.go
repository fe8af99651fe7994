// Package txresult interprets confirmed transaction blocks: success or
// failure, the failure reason, and the id of a newly created game object.
package txresult

import "strings"

const (
	successStatus = "success"

	// UnknownFailure is reported when a failed block carries no usable
	// status or error text.
	UnknownFailure = "unknown failure"

	createdChange = "created"
)

// IsSuccess reports whether the block was confirmed successfully on chain.
// A missing or malformed status is a failure, never a default success.
func IsSuccess(block *TransactionBlock) bool {
	if block == nil || block.Effects == nil {
		return false
	}

	return strings.EqualFold(block.Effects.Status.Status, successStatus)
}

// FailureReason extracts the most specific failure text available. It never
// fails itself: with nothing usable in the block it reports UnknownFailure.
func FailureReason(block *TransactionBlock) string {
	if block == nil || block.Effects == nil {
		return UnknownFailure
	}

	status := block.Effects.Status
	if len(status.Error) > 0 {
		return status.Error
	}

	if len(status.Status) > 0 {
		return status.Status
	}

	return UnknownFailure
}

// ExtractCreatedID resolves the id of the object created by a transaction.
// Sources are consulted in a fixed order and the first hit wins:
//
//  1. an emitted event matching eventType, by its game_id payload field
//  2. a "created" object change matching objectType
//  3. a created effect with shared ownership
//
// An empty result means the chain accepted the transaction but the client
// cannot name the new object; callers must treat that as unresolved rather
// than falling back to a guess.
func ExtractCreatedID(block *TransactionBlock, eventType string, objectType string) string {
	if block == nil {
		return ""
	}

	for _, event := range block.Events {
		if event.Type == eventType && len(event.ParsedJSON.GameID) > 0 {
			return event.ParsedJSON.GameID
		}
	}

	for _, change := range block.ObjectChanges {
		if change.Type == createdChange && change.ObjectType == objectType && len(change.ObjectID) > 0 {
			return change.ObjectID
		}
	}

	if block.Effects != nil {
		for _, created := range block.Effects.Created {
			if created.Owner.IsShared() && len(created.Reference.ObjectID) > 0 {
				return created.Reference.ObjectID
			}
		}
	}

	return ""
}

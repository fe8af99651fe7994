package txresult

import "encoding/json"

// TransactionBlock is the confirmed view of a submitted transaction as
// returned by the fullnode. Only the fields the client inspects are decoded;
// everything else is ignored.
type TransactionBlock struct {
	Digest        string         `json:"digest"`
	Effects       *Effects       `json:"effects"`
	Events        []Event        `json:"events"`
	ObjectChanges []ObjectChange `json:"objectChanges"`
}

type Effects struct {
	Status  Status          `json:"status"`
	Created []CreatedObject `json:"created"`
}

// Status is either a bare string ("success") or a structured object with a
// nested status and optional error. Both wire forms decode into the same
// value.
type Status struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		s.Status = plain
		s.Error = ""

		return nil
	}

	type statusObject struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}

	var structured statusObject
	if err := json.Unmarshal(data, &structured); err != nil {
		//nolint:wrapcheck
		return err
	}

	s.Status = structured.Status
	s.Error = structured.Error

	return nil
}

type Event struct {
	Type       string       `json:"type"`
	ParsedJSON EventPayload `json:"parsedJson"`
}

type EventPayload struct {
	GameID string `json:"game_id"`
}

type ObjectChange struct {
	Type       string `json:"type"`
	ObjectType string `json:"objectType"`
	ObjectID   string `json:"objectId"`
}

type CreatedObject struct {
	Owner     Owner           `json:"owner"`
	Reference ObjectReference `json:"reference"`
}

// Owner distinguishes the shared-ownership variant from address or object
// ownership. Shared objects arrive as {"Shared": {...}}; immutable objects
// are the bare string "Immutable", other owners an address-keyed object.
type Owner struct {
	Shared json.RawMessage `json:"Shared"`
}

func (o *Owner) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		o.Shared = nil

		return nil
	}

	type ownerObject struct {
		Shared json.RawMessage `json:"Shared"`
	}

	var structured ownerObject
	if err := json.Unmarshal(data, &structured); err != nil {
		//nolint:wrapcheck
		return err
	}

	o.Shared = structured.Shared

	return nil
}

func (o Owner) IsShared() bool {
	return len(o.Shared) > 0
}

type ObjectReference struct {
	ObjectID string `json:"objectId"`
}

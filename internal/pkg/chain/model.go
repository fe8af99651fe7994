package chain

import "math/big"

type ArgKind int

const (
	ArgObject ArgKind = iota
	ArgPureBytes
	ArgPureAddress
	ArgResult
)

// Arg is a single move-call argument. Argument order is a wire contract with
// the deployed program and is preserved exactly as built.
type Arg struct {
	Kind ArgKind

	Object  string
	Bytes   []byte
	Address string
	Result  int
}

func Object(id string) Arg {
	return Arg{Kind: ArgObject, Object: id}
}

func PureBytes(b []byte) Arg {
	return Arg{Kind: ArgPureBytes, Bytes: b}
}

func PureAddress(address string) Arg {
	return Arg{Kind: ArgPureAddress, Address: address}
}

type Command struct {
	SplitGas *SplitGasCommand
	MoveCall *MoveCallCommand
}

// SplitGasCommand carves a stake coin of the given MIST amount off the gas
// coin, the client's only coin-selection strategy.
type SplitGasCommand struct {
	Amount *big.Int
}

type MoveCallCommand struct {
	Target    string
	Arguments []Arg
}

// Transaction is an ordered programmable transaction under construction.
type Transaction struct {
	commands []Command
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

// SplitGas appends a gas split and returns the argument referencing the new
// coin in later commands.
func (t *Transaction) SplitGas(amount *big.Int) Arg {
	t.commands = append(t.commands, Command{
		SplitGas: &SplitGasCommand{Amount: amount},
	})

	return Arg{Kind: ArgResult, Result: len(t.commands) - 1}
}

func (t *Transaction) MoveCall(target string, arguments ...Arg) {
	t.commands = append(t.commands, Command{
		MoveCall: &MoveCallCommand{
			Target:    target,
			Arguments: arguments,
		},
	})
}

// Commands exposes the built command list in submission order.
func (t *Transaction) Commands() []Command {
	return t.commands
}

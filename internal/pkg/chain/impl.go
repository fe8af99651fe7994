package chain

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/do/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/suidrift/suidrift/internal/pkg/txresult"
)

// Wallet signs and executes a transaction and reports the confirmed block.
// An error means the attempt died before or at signing; a returned block may
// still describe an on-chain failure and must go through txresult.
type Wallet interface {
	Address() string
	SignAndExecute(ctx context.Context, tx *Transaction) (*txresult.TransactionBlock, error)
}

const (
	ed25519Flag byte = 0x00

	confirmPollInterval = 500 * time.Millisecond
)

var ErrTransactionNotFound = errors.New("transaction not found")

// ChainService is a key-file wallet talking JSON-RPC to a fullnode.
type ChainService struct {
	RPCURL string

	privateKey ed25519.PrivateKey
	address    string

	httpClient *http.Client
}

func NewChainService(i do.Injector) (*ChainService, error) {
	rpcURL := do.MustInvokeNamed[string](i, "rpc-url")
	keyFile := do.MustInvokeNamed[string](i, "key-file")

	raw, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode key file: %w", err)
	}

	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("failed to load key: expected %d seed bytes, got %d", ed25519.SeedSize, len(seed))
	}

	privateKey := ed25519.NewKeyFromSeed(seed)

	return &ChainService{
		RPCURL: rpcURL,

		privateKey: privateKey,
		address:    deriveAddress(privateKey.Public().(ed25519.PublicKey)),

		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// deriveAddress computes the account address from the public key: the
// blake2b-256 digest of the scheme flag followed by the key bytes.
func deriveAddress(publicKey ed25519.PublicKey) string {
	digest := blake2b.Sum256(append([]byte{ed25519Flag}, publicKey...))

	return "0x" + hex.EncodeToString(digest[:])
}

func (s *ChainService) Address() string {
	return s.address
}

type wireArg struct {
	Object  string `json:"object,omitempty"`
	Pure    string `json:"pure,omitempty"`
	Address string `json:"address,omitempty"`
	Result  *int   `json:"result,omitempty"`
}

type wireCommand struct {
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount,omitempty"`
	Target    string    `json:"target,omitempty"`
	Arguments []wireArg `json:"arguments,omitempty"`
}

type wireTransaction struct {
	Sender   string        `json:"sender"`
	Commands []wireCommand `json:"commands"`
}

func (s *ChainService) encode(tx *Transaction) ([]byte, error) {
	wire := wireTransaction{
		Sender:   s.address,
		Commands: make([]wireCommand, 0, len(tx.Commands())),
	}

	for _, command := range tx.Commands() {
		switch {
		case command.SplitGas != nil:
			wire.Commands = append(wire.Commands, wireCommand{
				Kind:   "split-gas",
				Amount: command.SplitGas.Amount.String(),
			})
		case command.MoveCall != nil:
			arguments := make([]wireArg, 0, len(command.MoveCall.Arguments))

			for _, argument := range command.MoveCall.Arguments {
				switch argument.Kind {
				case ArgObject:
					arguments = append(arguments, wireArg{Object: argument.Object})
				case ArgPureBytes:
					arguments = append(arguments, wireArg{Pure: base64.StdEncoding.EncodeToString(argument.Bytes)})
				case ArgPureAddress:
					arguments = append(arguments, wireArg{Address: argument.Address})
				case ArgResult:
					result := argument.Result
					arguments = append(arguments, wireArg{Result: &result})
				}
			}

			wire.Commands = append(wire.Commands, wireCommand{
				Kind:      "move-call",
				Target:    command.MoveCall.Target,
				Arguments: arguments,
			})
		}
	}

	encoded, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	return encoded, nil
}

// sign produces the serialized signature over the blake2b digest of the
// transaction bytes: flag || signature || public key, base64 encoded.
func (s *ChainService) sign(txBytes []byte) string {
	digest := blake2b.Sum256(txBytes)
	signature := ed25519.Sign(s.privateKey, digest[:])

	publicKey := s.privateKey.Public().(ed25519.PublicKey)

	serialized := make([]byte, 0, 1+len(signature)+len(publicKey))
	serialized = append(serialized, ed25519Flag)
	serialized = append(serialized, signature...)
	serialized = append(serialized, publicKey...)

	return base64.StdEncoding.EncodeToString(serialized)
}

func (s *ChainService) SignAndExecute(ctx context.Context, tx *Transaction) (*txresult.TransactionBlock, error) {
	txBytes, err := s.encode(tx)
	if err != nil {
		return nil, err
	}

	params := []any{
		base64.StdEncoding.EncodeToString(txBytes),
		[]string{s.sign(txBytes)},
		map[string]bool{
			"showEffects":       true,
			"showEvents":        true,
			"showObjectChanges": true,
		},
	}

	var submitted txresult.TransactionBlock

	err = s.rpcCall(ctx, "sui_executeTransactionBlock", params, &submitted)
	if err != nil {
		return nil, fmt.Errorf("failed to execute transaction: %w", err)
	}

	return s.WaitForTransaction(ctx, submitted.Digest)
}

// WaitForTransaction polls the fullnode until the block is queryable or the
// context ends.
func (s *ChainService) WaitForTransaction(ctx context.Context, digest string) (*txresult.TransactionBlock, error) {
	params := []any{
		digest,
		map[string]bool{
			"showEffects":       true,
			"showEvents":        true,
			"showObjectChanges": true,
		},
	}

	for {
		var block txresult.TransactionBlock

		err := s.rpcCall(ctx, "sui_getTransactionBlock", params, &block)
		if err == nil {
			return &block, nil
		}

		if !errors.Is(err, ErrTransactionNotFound) {
			return nil, fmt.Errorf("failed to confirm transaction %s: %w", digest, err)
		}

		select {
		case <-ctx.Done():
			//nolint:wrapcheck
			return nil, ctx.Err()
		case <-time.After(confirmPollInterval):
		}
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (s *ChainService) rpcCall(ctx context.Context, method string, params any, result any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.RPCURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create rpc request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")

	response, err := s.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer response.Body.Close()

	var decoded rpcResponse

	err = json.NewDecoder(response.Body).Decode(&decoded)
	if err != nil {
		return fmt.Errorf("failed to decode rpc response: %w", err)
	}

	if decoded.Error != nil {
		if strings.Contains(strings.ToLower(decoded.Error.Message), "could not find") {
			return fmt.Errorf("%w: %s", ErrTransactionNotFound, decoded.Error.Message)
		}

		return fmt.Errorf("rpc %s failed: %s", method, decoded.Error.Message)
	}

	if result != nil {
		err = json.Unmarshal(decoded.Result, result)
		if err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}

	return nil
}

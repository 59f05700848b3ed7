package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/core-coin/go-core/v2/accounts/abi"
	"github.com/core-coin/go-core/v2/accounts/abi/bind"
	"github.com/core-coin/go-core/v2/common"
	"github.com/core-coin/go-core/v2/core/types"
	"github.com/core-coin/go-core/v2/crypto"
	"github.com/core-coin/go-core/v2/xcbclient"

	"github.com/core-coin/stips/internal/config"
	"github.com/core-coin/stips/pkg/logger"
)

const (
	// DeliveryTimeout bounds how long a delivery waits to be mined before
	// it is reported as failed
	DeliveryTimeout = 60 * time.Second
)

// Gocore delivers settled value on the Core blockchain by calling
// transfer(address,uint256) on the payout token from the operator account.
// It is the production TransferService.
type Gocore struct {
	logger *logger.Logger
	config *config.Config
	apiURL string
	client *xcbclient.Client

	auth          *bind.TransactOpts
	tokenContract *bind.BoundContract
}

// NewGocore creates a new Gocore instance.
func NewGocore(apiURL string, logger *logger.Logger, config *config.Config) *Gocore {
	return &Gocore{apiURL: apiURL, logger: logger, config: config}
}

func (g *Gocore) Run() error {
	err := g.ConnectToRPC()
	if err != nil {
		return fmt.Errorf("failed to connect to the core RPC server: %w", err)
	}
	err = g.BuildBindings()
	if err != nil {
		return fmt.Errorf("failed to build bindings: %w", err)
	}
	return nil
}

func (g *Gocore) ConnectToRPC() error {
	client, err := xcbclient.Dial(g.apiURL)
	if err != nil {
		return fmt.Errorf("failed to connect to the core RPC server: %w", err)
	}
	g.client = client
	return nil
}

func (g *Gocore) BuildBindings() error {
	tokenAddress, err := common.HexToAddress(g.config.TokenContractAddress)
	if err != nil {
		return fmt.Errorf("failed to parse token contract address: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(TokenABI))
	if err != nil {
		return fmt.Errorf("failed to parse token ABI: %w", err)
	}

	key, err := crypto.UnmarshalPrivateKeyHex(g.config.OperatorKey)
	if err != nil {
		return fmt.Errorf("failed to parse operator key: %w", err)
	}
	auth, err := bind.NewKeyedTransactorWithNetworkID(key, g.config.NetworkID)
	if err != nil {
		return fmt.Errorf("failed to build transactor: %w", err)
	}
	g.auth = auth

	contract := bind.NewBoundContract(tokenAddress, parsedABI, g.client, g.client, g.client)
	g.tokenContract = contract

	return nil
}

func (g *Gocore) Close() error {
	if g.client != nil {
		g.client.Close()
	}
	return nil
}

// Transfer sends amount to the recipient and waits for the transaction to be
// mined. Any failure (rejected transaction, reverted call, timeout) is
// returned as an error so the engine can route the amount into escrow.
func (g *Gocore) Transfer(to string, amount uint64) error {
	recipient, err := common.HexToAddress(to)
	if err != nil {
		return fmt.Errorf("failed to parse recipient address: %w", err)
	}

	tx, err := g.tokenContract.Transact(g.auth, "transfer", recipient, new(big.Int).SetUint64(amount))
	if err != nil {
		return fmt.Errorf("failed to send transfer: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DeliveryTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, g.client, tx)
	if err != nil {
		return fmt.Errorf("failed to wait for transfer %s: %w", tx.Hash().String(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transfer %s reverted", tx.Hash().String())
	}

	g.logger.Debug("Transfer delivered ", "tx ", tx.Hash().String(), "to ", to, "amount ", amount)
	return nil
}

// GetTokenBalance returns the token balance of an address.
func (g *Gocore) GetTokenBalance(address string) (*big.Int, error) {
	holder, err := common.HexToAddress(address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse holder address: %w", err)
	}
	results := []interface{}{}
	err = g.tokenContract.Call(nil, &results, "balanceOf", holder)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	balance := results[0].(*big.Int)
	return balance, nil
}

// OperatorBalance returns the operator account's token balance, used at
// startup to warn when the delivery account is underfunded.
func (g *Gocore) OperatorBalance() (*big.Int, error) {
	return g.GetTokenBalance(g.auth.From.Hex())
}

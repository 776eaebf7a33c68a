// Package chain provides the thin Ethereum RPC layer the legacy direct
// mode uses for wallet balance and node health.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/lucasharte/arbot/internal/domain"
)

// weiPerEth is 1e18 as a float for display conversion.
var weiPerEth = new(big.Float).SetFloat64(1e18)

// Client wraps an ethclient connection plus the wallet it reports on.
type Client struct {
	eth    *ethclient.Client
	wallet common.Address
}

// Dial connects to the JSON-RPC endpoint and binds the wallet address.
func Dial(ctx context.Context, rpcURL string, wallet common.Address) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", rpcURL, err)
	}
	return &Client{eth: eth, wallet: wallet}, nil
}

// Balance returns the wallet's current balance as a 6-decimal ETH string.
func (c *Client) Balance(ctx context.Context) (string, error) {
	wei, err := c.eth.BalanceAt(ctx, c.wallet, nil)
	if err != nil {
		return "", fmt.Errorf("chain: balance of %s: %w", c.wallet.Hex(), err)
	}
	eth := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEth)
	return eth.Text('f', 6), nil
}

// Health reports RPC reachability via the latest block number.
func (c *Client) Health(ctx context.Context) domain.ComponentHealth {
	block, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return domain.ComponentHealth{Status: "unreachable", Detail: err.Error()}
	}
	return domain.ComponentHealth{
		Status: "ok",
		Detail: fmt.Sprintf("block %d", block),
	}
}

// Wallet returns the bound wallet address.
func (c *Client) Wallet() common.Address {
	return c.wallet
}

// Close tears down the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

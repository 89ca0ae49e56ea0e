package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
)

// Client represents a Solana client that handles both RPC and WebSocket connections
type Client struct {
	RpcClient *rpc.Client
	WsClient  *ws.Client
	logger    *zap.Logger
}

// NewClient creates a new Solana client. The WebSocket connection is optional.
func NewClient(ctx context.Context, endpoint, wsEndpoint string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		RpcClient: rpc.New(endpoint),
		logger:    logger.Named("sol"),
	}
	if wsEndpoint != "" {
		wsClient, err := ws.Connect(ctx, wsEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to establish WebSocket connection: %w", err)
		}
		c.WsClient = wsClient
	}
	c.logger.Debug("solana client ready", zap.String("rpc", endpoint), zap.Bool("ws", c.WsClient != nil))
	return c, nil
}

// Close terminates all client connections
func (c *Client) Close() error {
	if c.RpcClient != nil {
		if err := c.RpcClient.Close(); err != nil {
			return fmt.Errorf("failed to close rpc client: %w", err)
		}
	}
	if c.WsClient != nil {
		c.WsClient.Close()
	}
	return nil
}

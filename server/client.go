package server

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a remote assistant's Ask procedure.
type Client struct {
	ask *connect.Client[wrapperspb.StringValue, wrapperspb.StringValue]
}

// NewClient creates a Client for the server at baseURL. A nil httpClient
// uses http.DefaultClient.
func NewClient(httpClient connect.HTTPClient, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		ask: connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](
			httpClient,
			strings.TrimRight(baseURL, "/")+AskProcedure,
		),
	}
}

// Ask sends prompt and returns the reply.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := c.ask.CallUnary(ctx, connect.NewRequest(wrapperspb.String(prompt)))
	if err != nil {
		return "", err
	}
	return resp.Msg.GetValue(), nil
}

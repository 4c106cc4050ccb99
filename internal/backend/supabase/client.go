// Package supabase implements backend.Client on top of the Supabase Go SDK:
// tables through its PostgREST client, auth through its GoTrue client.
//
// The SDK has no realtime channel support, so subscriptions are served by
// polling the subscribed table (see realtime.PollGroup).
package supabase

import (
	"context"
	"fmt"
	"strings"
	"time"

	supa "github.com/supabase-community/supabase-go"

	"zheliyou/internal/backend"
	"zheliyou/internal/domain"
	"zheliyou/internal/realtime"
)

type Options struct {
	Schema       string
	PollInterval time.Duration
}

type Client struct {
	url   string
	key   string
	token string
	opts  Options
	sdk   *supa.Client
	err   error

	hub   *realtime.Hub
	polls *realtime.PollGroup
}

var _ backend.Client = (*Client)(nil)

// New builds a client for the project at url using the anon (publishable) key.
func New(url, key string, opts Options) (*Client, error) {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	key = strings.TrimSpace(key)
	if url == "" || key == "" {
		return nil, domain.ValidationError{Field: "supabase", Msg: "url and key are required"}
	}

	sdk, err := newSDK(url, key, "", opts)
	if err != nil {
		return nil, err
	}
	hub := realtime.NewHub()
	return &Client{
		url:   url,
		key:   key,
		opts:  opts,
		sdk:   sdk,
		hub:   hub,
		polls: &realtime.PollGroup{Hub: hub, Interval: opts.PollInterval},
	}, nil
}

// WithToken returns a copy whose table and auth calls run as the token's principal.
// Realtime state is shared with the receiver.
func (c *Client) WithToken(token string) backend.Client {
	token = strings.TrimSpace(token)
	out := *c
	out.token = token
	out.sdk, out.err = newSDK(c.url, c.key, token, c.opts)
	return &out
}

func newSDK(url, key, token string, opts Options) (*supa.Client, error) {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"Authorization": "Bearer " + token}
	}
	sdk, err := supa.NewClient(url, key, &supa.ClientOptions{Headers: headers, Schema: opts.Schema})
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	if token != "" {
		sdk.Auth = sdk.Auth.WithToken(token)
	}
	return sdk, nil
}

// ready checks the client and ctx before a call; the SDK itself takes no context.
func (c *Client) ready(ctx context.Context) error {
	if c.err != nil {
		return c.err
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

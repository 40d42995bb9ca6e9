package mocks

import (
	"context"

	"revision-validator/core/browser"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of browser.Client
type Client struct {
	mock.Mock
}

var _ browser.Client = (*Client)(nil)

func (m *Client) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Client) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *Client) Click(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

func (m *Client) FillAndSubmit(ctx context.Context, fields []browser.Field, submit string) error {
	args := m.Called(ctx, fields, submit)
	return args.Error(0)
}

func (m *Client) WaitForAny(ctx context.Context, selectors ...string) (int, error) {
	args := m.Called(ctx, selectors)
	return args.Int(0), args.Error(1)
}

func (m *Client) WaitForAndExtract(ctx context.Context, ready string, labels map[string]string) (map[string]string, error) {
	args := m.Called(ctx, ready, labels)
	if texts, ok := args.Get(0).(map[string]string); ok {
		return texts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) TextsOf(ctx context.Context, selector string) ([]string, error) {
	args := m.Called(ctx, selector)
	if texts, ok := args.Get(0).([]string); ok {
		return texts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GoBack(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Client) EnterFrames(ctx context.Context, selectors ...string) error {
	args := m.Called(ctx, selectors)
	return args.Error(0)
}

func (m *Client) LeaveFrames() {
	m.Called()
}

func (m *Client) FollowNewWindow(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

func (m *Client) SwitchToMain(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Client) Screenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if img, ok := args.Get(0).([]byte); ok {
		return img, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Close() error {
	args := m.Called()
	return args.Error(0)
}

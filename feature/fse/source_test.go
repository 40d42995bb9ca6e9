package fse

import (
	"context"
	"errors"
	"testing"

	"revision-validator/core/browser"
	"revision-validator/core/browser/mocks"
	"revision-validator/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testKey = reconcile.Key{Order: "55", Line: "10"}

func headerLabels(cfg Config) map[string]string {
	return map[string]string{
		labelOrderItem:    cfg.OrderItem,
		labelCodem:        cfg.CodemDate,
		labelPart:         cfg.PartBlob,
		labelPlant:        cfg.Plant,
		labelTraceability: cfg.Traceability,
	}
}

// expectSearch sets up a search that reaches the details button.
func expectSearch(client *mocks.Client, cfg Config) {
	client.On("FillAndSubmit", mock.Anything, []browser.Field{
		{Selector: cfg.OrderInput, Value: "55"},
		{Selector: cfg.LineInput, Value: "10"},
	}, cfg.SearchButton).Return(nil)
	client.On("WaitForAny", mock.Anything, []string{cfg.DetailsButton, cfg.NoResults}).Return(0, nil)
	client.On("Click", mock.Anything, cfg.DetailsButton).Return(nil)
}

func TestFetchWorkOrder_Success(t *testing.T) {
	cfg := DefaultConfig()
	client := new(mocks.Client)
	expectSearch(client, cfg)
	client.On("WaitForAndExtract", mock.Anything, cfg.Header, headerLabels(cfg)).Return(map[string]string{
		labelOrderItem:    "55\n10",
		labelCodem:        "CODEM / DT. REV. ROT.\nC1\n01/02/2024",
		labelPart:         "PN / REV. PN / LID\nABC123-456-001 B L9",
		labelPlant:        " GPX ",
		labelTraceability: "IND. RASTR.\nS",
	}, nil)
	client.On("TextsOf", mock.Anything, cfg.Serials).Return([]string{"S1", " ", "S2"}, nil)
	client.On("Navigate", mock.Anything, cfg.SearchURL).Return(nil)

	wo, err := NewSource(client, cfg, nil).FetchWorkOrder(context.Background(), testKey)
	require.NoError(t, err)

	assert.Equal(t, reconcile.WorkOrder{
		Fields: reconcile.WorkOrderFields{
			Order:          "55",
			Item:           "10",
			Codem:          "C1",
			RoutingRevDate: "01/02/2024",
			PartNumber:     "ABC123-456-001",
			PartRevision:   "B",
			LID:            "L9",
			Plant:          "GPX",
			Traceability:   "S",
			Serials:        "S1, S2",
		},
		PartNumber: "123-456-001",
		Revision:   "B",
	}, wo)
	client.AssertExpectations(t)
}

func TestFetchWorkOrder_OptionalBlocksMissing(t *testing.T) {
	cfg := DefaultConfig()
	client := new(mocks.Client)
	expectSearch(client, cfg)
	client.On("WaitForAndExtract", mock.Anything, cfg.Header, mock.Anything).Return(map[string]string{
		labelPart: "PN / REV. PN / LID\n123-456-001 C",
	}, &browser.MissingError{Labels: []string{labelPlant, labelTraceability}})
	client.On("TextsOf", mock.Anything, cfg.Serials).Return([]string{}, nil)
	client.On("Navigate", mock.Anything, cfg.SearchURL).Return(nil)

	wo, err := NewSource(client, cfg, nil).FetchWorkOrder(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, "123-456-001", wo.PartNumber)
	assert.Equal(t, "C", wo.Revision)
	assert.Empty(t, wo.Fields.Plant)
}

func TestFetchWorkOrder_PartBlockMissing(t *testing.T) {
	cfg := DefaultConfig()
	client := new(mocks.Client)
	expectSearch(client, cfg)
	client.On("WaitForAndExtract", mock.Anything, cfg.Header, mock.Anything).Return(map[string]string{},
		&browser.MissingError{Labels: []string{labelPart}})
	client.On("Navigate", mock.Anything, cfg.SearchURL).Return(nil)

	_, err := NewSource(client, cfg, nil).FetchWorkOrder(context.Background(), testKey)
	u, ok := reconcile.AsUnavailable(err)
	require.True(t, ok)
	assert.Equal(t, reconcile.ReasonStructural, u.Reason)
}

func TestFetchWorkOrder_NotFound(t *testing.T) {
	cfg := DefaultConfig()
	client := new(mocks.Client)
	client.On("FillAndSubmit", mock.Anything, mock.Anything, cfg.SearchButton).Return(nil)
	client.On("WaitForAny", mock.Anything, []string{cfg.DetailsButton, cfg.NoResults}).Return(1, nil)
	client.On("Navigate", mock.Anything, cfg.SearchURL).Return(nil)

	_, err := NewSource(client, cfg, nil).FetchWorkOrder(context.Background(), testKey)
	u, ok := reconcile.AsUnavailable(err)
	require.True(t, ok)
	assert.Equal(t, reconcile.ReasonNotFound, u.Reason)
	client.AssertNotCalled(t, "Click", mock.Anything, mock.Anything)
}

func TestFetchWorkOrder_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	client := new(mocks.Client)
	client.On("FillAndSubmit", mock.Anything, mock.Anything, cfg.SearchButton).Return(nil)
	client.On("WaitForAny", mock.Anything, mock.Anything).Return(-1, browser.ErrTimeout)
	client.On("Navigate", mock.Anything, cfg.SearchURL).Return(nil)

	_, err := NewSource(client, cfg, nil).FetchWorkOrder(context.Background(), testKey)
	u, ok := reconcile.AsUnavailable(err)
	require.True(t, ok)
	assert.Equal(t, reconcile.ReasonTimeout, u.Reason)
	assert.ErrorIs(t, err, browser.ErrTimeout)
	client.AssertCalled(t, "Navigate", mock.Anything, cfg.SearchURL)
}

func TestFetchWorkOrder_ResetFails(t *testing.T) {
	cfg := DefaultConfig()
	client := new(mocks.Client)
	client.On("FillAndSubmit", mock.Anything, mock.Anything, cfg.SearchButton).Return(browser.ErrTimeout)
	client.On("Navigate", mock.Anything, cfg.SearchURL).Return(errors.New("tab crashed"))

	_, err := NewSource(client, cfg, nil).FetchWorkOrder(context.Background(), testKey)
	require.Error(t, err)
	_, ok := reconcile.AsUnavailable(err)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "tab crashed")
}

func TestFetchWorkOrder_UnexpectedError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoResults = ""
	client := new(mocks.Client)
	client.On("FillAndSubmit", mock.Anything, mock.Anything, cfg.SearchButton).Return(nil)
	client.On("WaitForAny", mock.Anything, []string{cfg.DetailsButton}).Return(0, nil)
	client.On("Click", mock.Anything, cfg.DetailsButton).Return(errors.New("detached"))
	client.On("Navigate", mock.Anything, cfg.SearchURL).Return(nil)

	_, err := NewSource(client, cfg, nil).FetchWorkOrder(context.Background(), testKey)
	require.Error(t, err)
	_, ok := reconcile.AsUnavailable(err)
	assert.False(t, ok)
}

func TestParse_NoPartNumber(t *testing.T) {
	wo := Parse(map[string]string{labelPart: "PN / REV. PN / LID\nXYZ A"}, nil)
	assert.Empty(t, wo.PartNumber)
	assert.Equal(t, "XYZ", wo.Fields.PartNumber)
	assert.Equal(t, "A", wo.Revision)
}

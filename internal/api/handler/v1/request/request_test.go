package request

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

func validBooking() CreateBookingRequest {
	return CreateBookingRequest{
		VisitorName:      "Neema Kaduma",
		VisitorEmail:     "neema@example.com",
		VisitorPhone:     "+255711000000",
		VisitorType:      "local",
		NumberOfVisitors: 2,
		VisitDate:        "2026-11-03",
		VisitTime:        "14:05",
	}
}

func TestCreateBookingRequest_ToDomain(t *testing.T) {
	req := validBooking()
	require.NoError(t, req.Validate())

	got, err := req.ToDomain(4)
	require.NoError(t, err)

	assert.Equal(t, uint(4), got.SiteID)
	assert.Equal(t, time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC), got.VisitDate)
	assert.Equal(t, "14:05:00", got.VisitTime)
	assert.Equal(t, domain.VisitorLocal, got.VisitorClass)
	assert.Equal(t, "neema@example.com", got.Visitor.Email)

	req.VisitTime = "14:05:30"
	got, err = req.ToDomain(4)
	require.NoError(t, err)
	assert.Equal(t, "14:05:30", got.VisitTime)
}

func TestCreateBookingRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateBookingRequest)
	}{
		{name: "bad email", mutate: func(r *CreateBookingRequest) { r.VisitorEmail = "neema" }},
		{name: "bad phone", mutate: func(r *CreateBookingRequest) { r.VisitorPhone = "call me" }},
		{name: "bad visitor type", mutate: func(r *CreateBookingRequest) { r.VisitorType = "resident" }},
		{name: "bad date", mutate: func(r *CreateBookingRequest) { r.VisitDate = "2026/11/03" }},
		{name: "bad time", mutate: func(r *CreateBookingRequest) { r.VisitTime = "2pm" }},
		{name: "missing name", mutate: func(r *CreateBookingRequest) { r.VisitorName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBooking()
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestCreateSiteRequest_ToDomain(t *testing.T) {
	req := CreateSiteRequest{Name: "Isimila"}
	assert.True(t, req.ToDomain().IsActive)

	inactive := false
	req.IsActive = &inactive
	assert.False(t, req.ToDomain().IsActive)
}

func TestUpdateBookingStatusRequest_Validate(t *testing.T) {
	assert.NoError(t, (&UpdateBookingStatusRequest{Status: "confirmed"}).Validate())
	assert.Error(t, (&UpdateBookingStatusRequest{Status: "archived"}).Validate())
	assert.Error(t, (&UpdateBookingStatusRequest{}).Validate())
}

func TestSubmitBidRequest_Validate(t *testing.T) {
	var req SubmitBidRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"bidder_name": "Asha Mwakalinga",
		"bidder_email": "asha@example.com",
		"bidder_phone": "+255700000001",
		"bid_amount": "260000.50"
	}`), &req))
	require.NoError(t, req.Validate())
	assert.True(t, req.Amount().Equal(decimal.RequireFromString("260000.50")))

	var missing SubmitBidRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"bidder_name": "Asha Mwakalinga",
		"bidder_email": "asha@example.com",
		"bidder_phone": "+255700000001",
		"amount": 260000
	}`), &missing))
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bid_amount: cannot be blank")
}

func TestListItemsRequest(t *testing.T) {
	req := ListItemsRequest{Type: "nft", Status: "sold", Search: "shield", Page: 2}
	require.NoError(t, req.Validate())
	assert.Equal(t, domain.ItemFilter{ProductType: domain.ProductNFT, Status: domain.ItemSold, Search: "shield", Page: 2}, req.ToDomain())

	assert.NoError(t, (&ListItemsRequest{}).Validate())
	assert.Error(t, (&ListItemsRequest{Type: "hologram"}).Validate())
	assert.Error(t, (&ListItemsRequest{Status: "auctioned"}).Validate())
}

func TestCreateItemRequest_Validate(t *testing.T) {
	req := CreateItemRequest{Name: "Hehe shield", Slug: "hehe-shield", ProductType: "both"}
	require.NoError(t, req.Validate())
	item := req.ToDomain()
	assert.Equal(t, "hehe-shield", item.Slug)
	assert.Equal(t, domain.ProductBoth, item.ProductType)

	assert.Error(t, (&CreateItemRequest{Name: "Hehe shield", ProductType: "hologram"}).Validate())
}

package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkwawa-heritage/marketplace-api/internal/api/middleware"
	"github.com/mkwawa-heritage/marketplace-api/internal/config"
	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/events"
	"github.com/mkwawa-heritage/marketplace-api/internal/pkg/reference"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository/memory"
	"github.com/mkwawa-heritage/marketplace-api/internal/service"
)

const signingKey = "test-key"

type fixture struct {
	router *gin.Engine
	store  *memory.Store
	item   domain.CatalogItem
	site   domain.TourismSite
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	ctx := context.Background()

	item, err := store.CreateItem(ctx, domain.CatalogItem{
		Name:        "Hehe shield",
		Slug:        "hehe-shield",
		ProductType: domain.ProductPhysical,
		BasePrice:   decimal.NewFromInt(250000),
		Status:      domain.ItemAvailable,
	})
	require.NoError(t, err)
	site, err := store.CreateSite(ctx, domain.TourismSite{
		Name:            "Kalenga Museum",
		Slug:            "kalenga-museum",
		SiteType:        "museum",
		EntryFeeLocal:   decimal.NewFromInt(5000),
		EntryFeeForeign: decimal.NewFromInt(10000),
		IsActive:        true,
	})
	require.NoError(t, err)

	refs, err := reference.New(reference.DefaultPrefix, reference.DefaultLength, reference.DefaultMaxAttempts)
	require.NoError(t, err)

	bids := service.NewBidLedger(store)
	bookings := service.NewBookingLedger(store, refs.Generate, events.Noop{})
	authSvc := service.NewAuthService(store, bcrypt.MinCost)
	_, _, err = authSvc.EnsureStaff(ctx, domain.Staff{Email: "curator@example.com", Password: "kalenga1894", Name: "Curator"})
	require.NoError(t, err)

	auth := NewAuthHandler(&config.APIConfig{JWTSigningKey: signingKey, JWTTTL: time.Hour}, authSvc, service.NewStaffService(store))
	bidding := NewBiddingHandler(bids)
	booking := NewBookingHandler(bookings)
	admin := NewAdminHandler(bids, bookings)

	r := gin.New()
	r.GET("/", HandleHealthcheck)
	api := r.Group("/api/v1")
	api.POST("/auth/login", auth.HandleLogin)
	api.GET("/items", bidding.HandleListItems)
	api.GET("/items/slug/:slug", bidding.HandleGetItemBySlug)
	api.GET("/items/:itemID", bidding.HandleGetItem)
	api.GET("/items/:itemID/bids", bidding.HandleListBids)
	api.POST("/items/:itemID/bids", bidding.HandleSubmitBid)
	api.GET("/sites", booking.HandleListSites)
	api.GET("/sites/slug/:slug", booking.HandleGetSiteBySlug)
	api.GET("/sites/:siteID", booking.HandleGetSite)
	api.POST("/sites/:siteID/bookings", booking.HandleCreateBooking)
	api.GET("/bookings/:reference", booking.HandleGetBooking)

	staff := api.Group("/admin", middleware.NewAuthenticator(signingKey).VerifyJWT())
	staff.GET("/me", auth.HandleMe)
	staff.POST("/items", admin.HandleCreateItem)
	staff.POST("/sites", admin.HandleCreateSite)
	staff.PATCH("/bookings/:reference/status", admin.HandleUpdateBookingStatus)

	return &fixture{router: r, store: store, item: item, site: site}
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "curator@example.com", "password": "kalenga1894"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	return resp.Token
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))

	return m
}

func bidBody(amount string) gin.H {
	return gin.H{
		"bidder_name":  "Asha Mwakalinga",
		"bidder_email": "asha@example.com",
		"bidder_phone": "+255700000001",
		"bid_amount":   amount,
	}
}

func TestHandleHealthcheck(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestBiddingHandler_SubmitBid(t *testing.T) {
	f := newFixture(t)
	path := "/api/v1/items/1/bids"

	rec := f.do(t, http.MethodPost, path, bidBody("240000"), "")
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "250000.00", body["floor"])
	assert.Equal(t, "bid must be higher than 250000.00", body["error"])

	rec = f.do(t, http.MethodPost, path, bidBody("260000.50"), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body = decodeMap(t, rec)
	assert.Equal(t, true, body["is_winning"])
	assert.Equal(t, "260000.5", body["amount"])
	assert.NotContains(t, rec.Body.String(), "asha@example.com", "bidder contact details stay private")

	rec = f.do(t, http.MethodGet, "/api/v1/items/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeMap(t, rec)
	assert.Equal(t, "bidding", body["status"])
	assert.Len(t, body["recent_bids"], 1)

	rec = f.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var bids []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bids))
	assert.Len(t, bids, 1)
}

func TestBiddingHandler_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "bad item id", method: http.MethodGet, path: "/api/v1/items/abc", want: http.StatusBadRequest},
		{name: "zero item id", method: http.MethodGet, path: "/api/v1/items/0", want: http.StatusBadRequest},
		{name: "unknown item", method: http.MethodGet, path: "/api/v1/items/99", want: http.StatusNotFound},
		{name: "unknown item bids", method: http.MethodGet, path: "/api/v1/items/99/bids", want: http.StatusNotFound},
		{name: "bid on unknown item", method: http.MethodPost, path: "/api/v1/items/99/bids", body: bidBody("300000"), want: http.StatusNotFound},
		{name: "negative bid", method: http.MethodPost, path: "/api/v1/items/1/bids", body: bidBody("-5"), want: http.StatusBadRequest},
		{name: "three decimals", method: http.MethodPost, path: "/api/v1/items/1/bids", body: bidBody("300000.125"), want: http.StatusBadRequest},
		{name: "bad email", method: http.MethodPost, path: "/api/v1/items/1/bids", body: gin.H{"bidder_name": "A", "bidder_email": "nope", "bidder_phone": "+255700000001", "bid_amount": "300000"}, want: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, path: "/api/v1/items/1/bids", body: "{", want: http.StatusBadRequest},
		{name: "unknown slug", method: http.MethodGet, path: "/api/v1/items/slug/spear", want: http.StatusNotFound},
		{name: "unknown product type", method: http.MethodGet, path: "/api/v1/items?type=hologram", want: http.StatusBadRequest},
		{name: "non-numeric page", method: http.MethodGet, path: "/api/v1/items?page=two", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body, "")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestBiddingHandler_SubmitBid_MissingAmount(t *testing.T) {
	f := newFixture(t)

	body := bidBody("")
	delete(body, "bid_amount")
	body["amount"] = 260000

	rec := f.do(t, http.MethodPost, "/api/v1/items/1/bids", body, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeMap(t, rec)
	assert.Equal(t, "validation", resp["kind"])
	assert.Contains(t, resp["error"], "bid_amount: cannot be blank")
}

func TestBiddingHandler_ListItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, item := range []domain.CatalogItem{
		{Name: "Chief portrait", Slug: "chief-portrait", ProductType: domain.ProductNFT, Status: domain.ItemBidding, Description: "Painting of Chief Mkwawa"},
		{Name: "Woven basket", Slug: "woven-basket", ProductType: domain.ProductPhysical, Status: domain.ItemSold, ArtistName: "Kalenga Weavers"},
	} {
		_, err := f.store.CreateItem(ctx, item)
		require.NoError(t, err)
	}

	slugs := func(t *testing.T, rec *httptest.ResponseRecorder) []string {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var page domain.ItemPage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		out := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			out = append(out, item.Slug)
		}
		return out
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "sold hidden", query: "", want: []string{"chief-portrait", "hehe-shield"}},
		{name: "status filter", query: "?status=sold", want: []string{"woven-basket"}},
		{name: "type filter", query: "?type=nft", want: []string{"chief-portrait"}},
		{name: "search", query: "?search=mkwawa", want: []string{"chief-portrait"}},
		{name: "page past the end", query: "?page=5", want: []string{"chief-portrait", "hehe-shield"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugs(t, f.do(t, http.MethodGet, "/api/v1/items"+tt.query, nil, "")))
		})
	}

	body := decodeMap(t, f.do(t, http.MethodGet, "/api/v1/items", nil, ""))
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(domain.ItemsPageSize), body["page_size"])
	assert.Equal(t, float64(2), body["total_items"])
	assert.Equal(t, float64(1), body["total_pages"])
}

func TestBiddingHandler_GetItemBySlug(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/items/1/bids", bidBody("260000"), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/items/slug/hehe-shield", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, float64(f.item.ID), body["id"])
	assert.Equal(t, "physical", body["product_type"])
	assert.Len(t, body["recent_bids"], 1)
}

func bookingBody(visitorType string, visitors int) gin.H {
	return gin.H{
		"visitor_name":       "Neema Kaduma",
		"visitor_email":      "neema@example.com",
		"visitor_phone":      "+255711000000",
		"visitor_type":       visitorType,
		"number_of_visitors": visitors,
		"visit_date":         "2026-11-03",
		"visit_time":         "09:30",
	}
}

func TestBookingHandler_CreateAndLookup(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/sites/1/bookings", bookingBody("foreign", 2), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "20000", body["total_amount"])
	assert.Equal(t, "2026-11-03", body["visit_date"])
	assert.Equal(t, "09:30:00", body["visit_time"])
	ref, _ := body["reference"].(string)
	assert.Regexp(t, `^MKW[0-9A-F]{8}$`, ref)

	rec = f.do(t, http.MethodGet, "/api/v1/bookings/"+ref, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ref, decodeMap(t, rec)["reference"])

	rec = f.do(t, http.MethodGet, "/api/v1/bookings/MKW00000000", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingHandler_Errors(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.CreateSite(context.Background(), domain.TourismSite{Name: "Closed", IsActive: false})
	require.NoError(t, err)

	badDate := bookingBody("local", 1)
	badDate["visit_date"] = "03/11/2026"
	badTime := bookingBody("local", 1)
	badTime["visit_time"] = "25:99"

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{name: "zero visitors", path: "/api/v1/sites/1/bookings", body: bookingBody("local", 0), want: http.StatusBadRequest},
		{name: "unknown visitor type", path: "/api/v1/sites/1/bookings", body: bookingBody("resident", 1), want: http.StatusBadRequest},
		{name: "bad date", path: "/api/v1/sites/1/bookings", body: badDate, want: http.StatusBadRequest},
		{name: "bad time", path: "/api/v1/sites/1/bookings", body: badTime, want: http.StatusBadRequest},
		{name: "unknown site", path: "/api/v1/sites/99/bookings", body: bookingBody("local", 1), want: http.StatusNotFound},
		{name: "inactive site", path: "/api/v1/sites/2/bookings", body: bookingBody("local", 1), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, tt.path, tt.body, "")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/sites/1", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/sites/2", nil, "").Code)
}

func TestBookingHandler_Sites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, site := range []domain.TourismSite{
		{Name: "Ruaha", Slug: "ruaha", SiteType: "game_reserve", IsActive: true},
		{Name: "Old fort", Slug: "old-fort", SiteType: "museum"},
	} {
		_, err := f.store.CreateSite(ctx, site)
		require.NoError(t, err)
	}

	names := func(rec *httptest.ResponseRecorder) []string {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sites []domain.TourismSite
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sites))
		out := make([]string, 0, len(sites))
		for _, s := range sites {
			out = append(out, s.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Kalenga Museum", "Ruaha"}, names(f.do(t, http.MethodGet, "/api/v1/sites", nil, "")))
	assert.Equal(t, []string{"Kalenga Museum"}, names(f.do(t, http.MethodGet, "/api/v1/sites?type=museum", nil, "")))
	assert.Equal(t, []string{}, names(f.do(t, http.MethodGet, "/api/v1/sites?type=cultural_site", nil, "")))

	rec := f.do(t, http.MethodGet, "/api/v1/sites/slug/kalenga-museum", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(f.site.ID), decodeMap(t, rec)["id"])

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/sites/slug/old-fort", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/sites/slug/nowhere", nil, "").Code)
}

func TestAuthHandler_Login(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "curator@example.com", "password": "wrong-pass1"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "ghost@example.com", "password": "kalenga1894"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "not-an-email", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := f.login(t)
	rec = f.do(t, http.MethodGet, "/api/v1/admin/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "curator@example.com", body["email"])
	assert.NotContains(t, body, "password")
}

func TestAdminHandler(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/admin/items", gin.H{"name": "Basket", "base_price": "15000"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := f.login(t)

	rec = f.do(t, http.MethodPost, "/api/v1/admin/items", gin.H{"name": "Basket", "base_price": "15000", "stock_quantity": 3}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeMap(t, rec)
	assert.Equal(t, "available", created["status"])
	assert.Equal(t, "basket", created["slug"])

	rec = f.do(t, http.MethodPost, "/api/v1/admin/items", gin.H{"name": "Basket", "base_price": "12000"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "slug already in use")

	rec = f.do(t, http.MethodPost, "/api/v1/admin/items", gin.H{"name": "Basket", "base_price": "-1"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/admin/sites", gin.H{"name": "Isimila", "entry_fee_local": "3000", "entry_fee_foreign": "8000"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeMap(t, rec)["is_active"])

	rec = f.do(t, http.MethodPost, "/api/v1/sites/1/bookings", bookingBody("local", 3), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	ref := decodeMap(t, rec)["reference"].(string)
	statusPath := "/api/v1/admin/bookings/" + ref + "/status"

	rec = f.do(t, http.MethodPatch, statusPath, gin.H{"status": "completed"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "pending cannot jump to completed")

	rec = f.do(t, http.MethodPatch, statusPath, gin.H{"status": "confirmed"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "confirmed", decodeMap(t, rec)["status"])

	rec = f.do(t, http.MethodPatch, statusPath, gin.H{"status": "archived"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/v1/admin/bookings/MKW00000000/status", gin.H{"status": "confirmed"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

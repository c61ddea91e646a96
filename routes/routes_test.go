package routes

import (
	"bytes"
	"canteen-storefront/config"
	"canteen-storefront/libs"
	"canteen-storefront/models"
	"canteen-storefront/repositories"
	"canteen-storefront/services"
	"canteen-storefront/utils"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCanteenAPI is a minimal stand-in for the remote canteen REST API.
type fakeCanteenAPI struct {
	revoked    atomic.Bool
	guestCalls atomic.Int32
	lastImage  atomic.Value
}

func (f *fakeCanteenAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Token ")
	if token == models.GuestToken {
		f.guestCalls.Add(1)
	}
	authorized := func() bool {
		if f.revoked.Load() || (token != "cust-token" && token != "admin-token") {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Invalid token."}`))
			return false
		}
		return true
	}

	switch r.Method + " " + r.URL.Path {
	case "POST /api/auth/login/":
		var creds models.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		switch creds.Username + ":" + creds.Password {
		case "ana:pw":
			w.Write([]byte(`{"key":"cust-token"}`))
		case "root:pw":
			w.Write([]byte(`{"key":"admin-token"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"non_field_errors":["Unable to log in with provided credentials."]}`))
		}
	case "GET /api/user/":
		if !authorized() {
			return
		}
		if token == "admin-token" {
			w.Write([]byte(`{"id":2,"username":"root","is_staff":true}`))
			return
		}
		w.Write([]byte(`{"id":1,"username":"ana","email":"ana@example.com"}`))
	case "GET /api/canteens/":
		w.Write([]byte(`[{"id":1,"name":"North Block"}]`))
	case "POST /api/orders/":
		if !authorized() {
			return
		}
		var req models.CreateOrderRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Canteen != 1 || len(req.Items) != 1 || req.Items[0].Quantity != 3 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":31}`))
	case "POST /api/payments/create/":
		if !authorized() {
			return
		}
		w.Write([]byte(`{"order_id":31,"razorpay_order_id":"order_x","amount":4500,"currency":"INR","key_id":"rzp"}`))
	case "POST /api/payments/verify/":
		if !authorized() {
			return
		}
		w.Write([]byte(`{"verified":true,"order_id":31,"status":"success"}`))
	case "GET /api/orders/31/":
		if !authorized() {
			return
		}
		w.Write([]byte(`{"id":31,"status":"PENDING","total_price":"45.00","items":[]}`))
	case "GET /api/orders/":
		if !authorized() {
			return
		}
		w.Write([]byte(`[{"id":31,"status":"PENDING","total_price":"45.00","items":[]}]`))
	case "POST /api/register/":
		var req models.RegisterRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Username == "ana" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"username":["A user with that username already exists."]}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"username":"` + req.Username + `","email":"` + req.Email + `"}`))
	case "GET /api/categories/":
		w.Write([]byte(`[{"id":1,"name":"Drinks"}]`))
	case "GET /api/admin/orders/":
		if !authorized() {
			return
		}
		w.Write([]byte(`[]`))
	case "POST /api/admin/menu-items/":
		if !authorized() {
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil || r.FormValue("price") != "12.50" || r.FormValue("canteen") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if file, header, err := r.FormFile("image"); err == nil {
			file.Close()
			f.lastImage.Store(header.Filename)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":40,"canteen":1,"category":null,"name":"` + r.FormValue("name") + `","price":"12.50","is_available":true}`))
	case "DELETE /api/admin/menu-items/40/":
		if !authorized() {
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "POST /api/auth/logout/":
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type client struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, cookie := range w.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}
	return w
}

func (c *client) data(w *httptest.ResponseRecorder, out interface{}) {
	c.t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(c.t, resp.Success, w.Body.String())
	require.NoError(c.t, json.Unmarshal(resp.Data, out))
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeCanteenAPI) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &fakeCanteenAPI{}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		StaticDir:         t.TempDir(),
		PublicURL:         "http://shop.test",
		DeviceTTL:         time.Hour,
		OrderPollInterval: time.Millisecond,
		AllowGuest:        true,
	}
	logger := zap.NewNop()
	store := repositories.NewMemoryRepository()
	backend := libs.NewBackendClient(server.URL+"/api", time.Second, server.Client(), logger)

	router := gin.New()
	SetupRoutes(router, Dependencies{
		Config:   cfg,
		Logger:   logger,
		Signer:   utils.NewTokenSigner("test", "canteen-storefront"),
		Backend:  backend,
		Auths:    services.NewAuthService(backend, store, services.AuthOptions{AllowGuest: true}, logger),
		Carts:    services.NewCartService(store, logger),
		Checkout: services.NewCheckoutService(backend, nil, logger),
		Orders:   services.NewOrderService(backend, cfg.OrderPollInterval, logger),
	})
	return router, api
}

func newClient(t *testing.T, router *gin.Engine) *client {
	return &client{t: t, router: router, cookies: map[string]*http.Cookie{}}
}

func TestStorefront_CartToConfirmation(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)

	var cart models.CartView
	c.data(c.do(http.MethodPut, "/api/cart/canteen", gin.H{"canteen_id": 1}), &cart)
	require.NotNil(t, cart.SelectedCanteenID)

	tea := gin.H{"menu_item_id": 1, "name": "Tea", "unit_price": "15", "quantity": 1}
	c.do(http.MethodPost, "/api/cart/items", tea)
	tea["quantity"] = 2
	c.data(c.do(http.MethodPost, "/api/cart/items", tea), &cart)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, "45", cart.TotalPrice.String())

	w := c.do(http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/login?next=%2Fapi%2Fcheckout"`)

	var session models.SessionView
	c.data(c.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ana", "password": "pw"}), &session)
	assert.Equal(t, models.AuthAuthenticated, session.State)
	assert.Equal(t, models.RoleCustomer, session.Role)

	var placed models.CheckoutResponse
	w = c.do(http.MethodPost, "/api/checkout", gin.H{"notes": "less sugar"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c.data(w, &placed)
	assert.Equal(t, 31, placed.OrderID)
	assert.Equal(t, "order_x", placed.Payment.GatewayOrderID)

	var confirmation models.ConfirmationResponse
	c.data(c.do(http.MethodPost, "/api/checkout/verify", gin.H{
		"order_id":            31,
		"razorpay_order_id":   "order_x",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "sig",
	}), &confirmation)
	assert.Equal(t, "/order-confirmation/31", confirmation.RedirectTo)

	c.data(c.do(http.MethodGet, "/api/cart", nil), &cart)
	assert.Empty(t, cart.Lines)
	assert.Nil(t, cart.SelectedCanteenID)

	var orders []models.Order
	c.data(c.do(http.MethodGet, "/api/orders", nil), &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusPending, orders[0].Status)
}

func TestStorefront_CartIsPerBrowserSession(t *testing.T) {
	router, _ := newTestRouter(t)
	first := newClient(t, router)
	second := newClient(t, router)

	first.do(http.MethodPost, "/api/cart/items", gin.H{"menu_item_id": 1, "name": "Tea", "unit_price": "15", "quantity": 1})

	var cart models.CartView
	second.data(second.do(http.MethodGet, "/api/cart", nil), &cart)
	assert.Empty(t, cart.Lines)

	first.data(first.do(http.MethodGet, "/api/cart", nil), &cart)
	assert.Len(t, cart.Lines, 1)
}

func TestStorefront_Guards(t *testing.T) {
	router, _ := newTestRouter(t)

	anonymous := newClient(t, router)
	w := anonymous.do(http.MethodGet, "/admin/orders", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin%2Forders", w.Header().Get("Location"))

	customer := newClient(t, router)
	customer.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ana", "password": "pw"})
	w = customer.do(http.MethodGet, "/admin/orders", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, customer.do(http.MethodGet, "/order-summary", nil).Code)

	admin := newClient(t, router)
	admin.do(http.MethodPost, "/api/auth/login", gin.H{"username": "root", "password": "pw"})
	assert.Equal(t, http.StatusOK, admin.do(http.MethodGet, "/admin/orders", nil).Code)
	w = admin.do(http.MethodGet, "/api/admin/tables/qr?canteen_id=1&table=4", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusOK, anonymous.do(http.MethodGet, "/menu", nil).Code)
}

func TestStorefront_BadCredentials(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)

	w := c.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ana", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var session models.SessionView
	c.data(c.do(http.MethodGet, "/api/auth/session", nil), &session)
	assert.Equal(t, models.AuthUnauthenticated, session.State)
}

func TestStorefront_RevokedTokenSignsOut(t *testing.T) {
	router, api := newTestRouter(t)
	c := newClient(t, router)
	c.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ana", "password": "pw"})

	api.revoked.Store(true)
	w := c.do(http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var session models.SessionView
	c.data(c.do(http.MethodGet, "/api/auth/session", nil), &session)
	assert.Equal(t, models.AuthUnauthenticated, session.State)
	assert.Nil(t, session.User)
}

func TestStorefront_GuestCannotCheckOut(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)

	var session models.SessionView
	c.data(c.do(http.MethodPost, "/api/auth/guest", nil), &session)
	assert.Equal(t, models.AuthGuest, session.State)

	c.do(http.MethodPut, "/api/cart/canteen", gin.H{"canteen_id": 1})
	c.do(http.MethodPost, "/api/cart/items", gin.H{"menu_item_id": 1, "name": "Tea", "unit_price": "15", "quantity": 1})

	w := c.do(http.MethodPost, "/api/checkout", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c.data(c.do(http.MethodPost, "/api/auth/logout", nil), &session)
	assert.Equal(t, models.AuthUnauthenticated, session.State)
}

func TestStorefront_GuestStaysOffTheRemoteAPI(t *testing.T) {
	router, api := newTestRouter(t)
	c := newClient(t, router)
	c.do(http.MethodPost, "/api/auth/guest", nil)

	for _, path := range []string{"/api/orders", "/api/orders/31", "/api/orders/31/track"} {
		w := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Contains(t, w.Body.String(), `"redirect":"/login?next=`, path)
	}
	w := c.do(http.MethodPost, "/api/checkout/verify", gin.H{
		"order_id":            31,
		"razorpay_order_id":   "order_x",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "sig",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var session models.SessionView
	c.data(c.do(http.MethodGet, "/api/auth/session", nil), &session)
	assert.Equal(t, models.AuthGuest, session.State)
	assert.Zero(t, api.guestCalls.Load())
}

func TestStorefront_RevokedAdminTokenRedirectsToAdminLogin(t *testing.T) {
	router, api := newTestRouter(t)
	c := newClient(t, router)
	c.do(http.MethodPost, "/api/auth/login", gin.H{"username": "root", "password": "pw"})

	api.revoked.Store(true)
	w := c.do(http.MethodGet, "/api/admin/orders", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/admin/login?next=%2Fapi%2Fadmin%2Forders", body.Redirect)
}

func TestStorefront_Register(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)

	account := gin.H{"username": "ravi", "email": "ravi@canteen.test", "password": "s3cret-pw", "password2": "s3cret-pw"}
	w := c.do(http.MethodPost, "/api/auth/register", account)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user models.RegisteredUser
	c.data(w, &user)
	assert.Equal(t, "ravi", user.Username)

	tests := []struct {
		name           string
		body           gin.H
		expectedStatus int
	}{
		{"password_mismatch", gin.H{"username": "ravi", "email": "ravi@canteen.test", "password": "s3cret-pw", "password2": "other-pw"}, http.StatusBadRequest},
		{"short_password", gin.H{"username": "ravi", "email": "ravi@canteen.test", "password": "short", "password2": "short"}, http.StatusBadRequest},
		{"bad_email", gin.H{"username": "ravi", "email": "ravi", "password": "s3cret-pw", "password2": "s3cret-pw"}, http.StatusBadRequest},
		{"username_taken", gin.H{"username": "ana", "email": "ana@canteen.test", "password": "s3cret-pw", "password2": "s3cret-pw"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, c.do(http.MethodPost, "/api/auth/register", tt.body).Code)
		})
	}

	var session models.SessionView
	c.data(c.do(http.MethodGet, "/api/auth/session", nil), &session)
	assert.Equal(t, models.AuthUnauthenticated, session.State)
}

func TestStorefront_AdminMenuItems(t *testing.T) {
	router, api := newTestRouter(t)
	admin := newClient(t, router)
	admin.do(http.MethodPost, "/api/auth/login", gin.H{"username": "root", "password": "pw"})

	upload := func(c *client, price string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("canteen", "1")
		mw.WriteField("name", "Masala Dosa")
		mw.WriteField("price", price)
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="dosa.png"`)
		header.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		part.Write([]byte("\x89PNG"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/admin/menu-items", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		for _, cookie := range c.cookies {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		c.router.ServeHTTP(w, req)
		return w
	}

	w := upload(admin, "12.50")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.SavedMenuItem
	admin.data(w, &item)
	assert.Equal(t, 40, item.ID)
	assert.Equal(t, "Masala Dosa", item.Name)
	assert.Equal(t, "dosa.png", api.lastImage.Load())

	assert.Equal(t, http.StatusBadRequest, upload(admin, "12.505").Code)
	assert.Equal(t, http.StatusBadRequest, upload(admin, "-1").Code)
	assert.Equal(t, http.StatusOK, admin.do(http.MethodDelete, "/api/admin/menu-items/40", nil).Code)

	customer := newClient(t, router)
	customer.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ana", "password": "pw"})
	assert.Equal(t, http.StatusForbidden, upload(customer, "12.50").Code)

	var categories []models.Category
	customer.data(customer.do(http.MethodGet, "/api/categories", nil), &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, "Drinks", categories[0].Name)
}

func TestStorefront_TableQRFilenameIsQuoted(t *testing.T) {
	router, _ := newTestRouter(t)
	admin := newClient(t, router)
	admin.do(http.MethodPost, "/api/auth/login", gin.H{"username": "root", "password": "pw"})

	w := admin.do(http.MethodGet, "/api/admin/tables/qr?canteen_id=1&table="+url.QueryEscape(`T"4;x`), nil)
	require.Equal(t, http.StatusOK, w.Code)

	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "inline", disposition)
	assert.Equal(t, `canteen-1-table-T"4;x.png`, params["filename"])
}

func TestStorefront_TrackOrderStream(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)
	c.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ana", "password": "pw"})

	w := c.do(http.MethodGet, "/api/orders/404/track", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStorefront_ValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t)
	c := newClient(t, router)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"zero_quantity", http.MethodPost, "/api/cart/items", gin.H{"menu_item_id": 1, "name": "Tea", "unit_price": "1", "quantity": 0}},
		{"negative_price", http.MethodPost, "/api/cart/items", gin.H{"menu_item_id": 1, "name": "Tea", "unit_price": "-1", "quantity": 1}},
		{"missing_quantity", http.MethodPatch, "/api/cart/items/1", gin.H{}},
		{"bad_item_id", http.MethodDelete, "/api/cart/items/abc", nil},
		{"bad_canteen", http.MethodPut, "/api/cart/canteen", gin.H{"canteen_id": -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := c.do(tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

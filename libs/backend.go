package libs

import (
	"bytes"
	"canteen-storefront/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("backend rejected credentials")
	ErrNotFound     = errors.New("backend resource not found")
)

// APIError is any other non-2xx answer from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Detail)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BackendClient talks to the canteen REST API. Every call is bounded by the
// configured timeout on top of the caller's context.
type BackendClient struct {
	baseURL string
	timeout time.Duration
	client  HTTPClient
	logger  *zap.Logger
}

func NewBackendClient(baseURL string, timeout time.Duration, client HTTPClient, logger *zap.Logger) *BackendClient {
	if client == nil {
		client = &http.Client{}
	}
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  client,
		logger:  logger,
	}
}

func (b *BackendClient) Login(ctx context.Context, creds models.Credentials) (string, error) {
	var out models.TokenResponse
	if err := b.do(ctx, http.MethodPost, "/auth/login/", "", creds, &out); err != nil {
		return "", err
	}
	return out.Key, nil
}

func (b *BackendClient) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := b.do(ctx, http.MethodGet, "/user/", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (b *BackendClient) Logout(ctx context.Context, token string) error {
	return b.do(ctx, http.MethodPost, "/auth/logout/", token, nil, nil)
}

func (b *BackendClient) ListCanteens(ctx context.Context) ([]models.Canteen, error) {
	canteens := []models.Canteen{}
	if err := b.do(ctx, http.MethodGet, "/canteens/", "", nil, &canteens); err != nil {
		return nil, err
	}
	return canteens, nil
}

func (b *BackendClient) ListMenuItems(ctx context.Context, canteenID int) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	path := "/menu-items/?canteen=" + strconv.Itoa(canteenID)
	if err := b.do(ctx, http.MethodGet, path, "", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (b *BackendClient) CreateOrder(ctx context.Context, token string, req models.CreateOrderRequest) (*models.CreatedOrder, error) {
	var out models.CreatedOrder
	if err := b.do(ctx, http.MethodPost, "/orders/", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *BackendClient) GetOrder(ctx context.Context, token string, orderID int) (*models.Order, error) {
	var order models.Order
	if err := b.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/", orderID), token, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (b *BackendClient) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	orders := []models.Order{}
	if err := b.do(ctx, http.MethodGet, "/orders/", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (b *BackendClient) CreatePayment(ctx context.Context, token string, orderID int) (*models.PaymentOrder, error) {
	var out models.PaymentOrder
	body := map[string]int{"order_id": orderID}
	if err := b.do(ctx, http.MethodPost, "/payments/create/", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *BackendClient) VerifyPayment(ctx context.Context, token string, req models.PaymentVerification) (*models.PaymentResult, error) {
	var out models.PaymentResult
	if err := b.do(ctx, http.MethodPost, "/payments/verify/", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *BackendClient) DashboardStats(ctx context.Context, token string) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := b.do(ctx, http.MethodGet, "/admin/dashboard-stats/", token, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (b *BackendClient) AdminListOrders(ctx context.Context, token string, status models.OrderStatus) ([]models.Order, error) {
	path := "/admin/orders/"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	orders := []models.Order{}
	if err := b.do(ctx, http.MethodGet, path, token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (b *BackendClient) AdminUpdateOrderStatus(ctx context.Context, token string, orderID int, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	body := map[string]models.OrderStatus{"status": status}
	if err := b.do(ctx, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/", orderID), token, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FilePart is a file forwarded as one part of a multipart request.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

func (b *BackendClient) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisteredUser, error) {
	var user models.RegisteredUser
	if err := b.do(ctx, http.MethodPost, "/register/", "", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (b *BackendClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := b.do(ctx, http.MethodGet, "/categories/", "", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (b *BackendClient) AdminListCategories(ctx context.Context, token string) ([]models.Category, error) {
	categories := []models.Category{}
	if err := b.do(ctx, http.MethodGet, "/admin/categories/", token, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (b *BackendClient) AdminCreateCategory(ctx context.Context, token, name string) (*models.Category, error) {
	var category models.Category
	if err := b.do(ctx, http.MethodPost, "/admin/categories/", token, map[string]string{"name": name}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (b *BackendClient) AdminUpdateCategory(ctx context.Context, token string, id int, name string) (*models.Category, error) {
	var category models.Category
	path := fmt.Sprintf("/admin/categories/%d/", id)
	if err := b.do(ctx, http.MethodPut, path, token, map[string]string{"name": name}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (b *BackendClient) AdminDeleteCategory(ctx context.Context, token string, id int) error {
	return b.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/categories/%d/", id), token, nil, nil)
}

func (b *BackendClient) AdminListMenuItems(ctx context.Context, token string, canteenID int) ([]models.MenuItem, error) {
	path := "/admin/menu-items/"
	if canteenID > 0 {
		path += "?canteen=" + strconv.Itoa(canteenID)
	}
	items := []models.MenuItem{}
	if err := b.do(ctx, http.MethodGet, path, token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AdminSaveMenuItem creates the item when id is zero and replaces item id
// otherwise. The image, when given, is sent as the "image" part.
func (b *BackendClient) AdminSaveMenuItem(ctx context.Context, token string, id int, input models.MenuItemInput, image *FilePart) (*models.SavedMenuItem, error) {
	method, path := http.MethodPost, "/admin/menu-items/"
	if id > 0 {
		method, path = http.MethodPut, fmt.Sprintf("/admin/menu-items/%d/", id)
	}

	fields := map[string]string{
		"canteen":      strconv.Itoa(input.CanteenID),
		"name":         input.Name,
		"description":  input.Description,
		"price":        input.Price.StringFixed(2),
		"is_available": strconv.FormatBool(input.IsAvailable),
	}
	if input.CategoryID != nil {
		fields["category"] = strconv.Itoa(*input.CategoryID)
	}
	if image != nil {
		image.Field = "image"
	}

	var item models.SavedMenuItem
	if err := b.doMultipart(ctx, method, path, token, fields, image, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (b *BackendClient) AdminDeleteMenuItem(ctx context.Context, token string, id int) error {
	return b.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/menu-items/%d/", id), token, nil, nil)
}

func (b *BackendClient) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	if body == nil {
		return b.send(ctx, method, path, token, nil, "", out)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return b.send(ctx, method, path, token, bytes.NewReader(payload), "application/json", out)
}

// doMultipart sends fields and an optional file part as multipart/form-data.
func (b *BackendClient) doMultipart(ctx context.Context, method, path, token string, fields map[string]string, file *FilePart, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return fmt.Errorf("encode field %s: %w", k, err)
		}
	}

	if file != nil {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return fmt.Errorf("encode file: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("encode file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	return b.send(ctx, method, path, token, &buf, w.FormDataContentType(), out)
}

func (b *BackendClient) send(ctx context.Context, method, path, token string, body io.Reader, contentType string, out interface{}) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Warn("backend request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	b.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{Status: resp.StatusCode, Detail: readDetail(resp.Body, resp.Status)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeResponse(resp.Body, out)
}

func readDetail(body io.Reader, fallback string) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return fallback
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(raw))
}

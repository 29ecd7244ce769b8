package router_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"retail-service/internal/dto"
	"retail-service/internal/handlers"
	"retail-service/internal/hashing"
	"retail-service/internal/models"
	"retail-service/internal/router"
	"retail-service/internal/service"
	"retail-service/internal/session"
	"retail-service/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type users struct{ byLogin map[string]models.User }

func (u users) Create(context.Context, *models.User) error { return nil }

func (u users) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, v := range u.byLogin {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, nil
}

func (u users) GetByLogin(_ context.Context, login string) (*models.User, error) {
	v, ok := u.byLogin[login]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

type sessions struct {
	mu   sync.Mutex
	recs map[string]session.Record
}

func (s *sessions) Save(_ context.Context, rec session.Record, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = rec
	return nil
}

func (s *sessions) Load(_ context.Context, id string) (*session.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *sessions) Touch(context.Context, string, time.Time, time.Duration) error { return nil }

func (s *sessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, id)
	return nil
}

// orders records who asked for what and answers with canned results.
type orders struct {
	mu         sync.Mutex
	listedFor  []string
	listedAll  int
	quick      []int
	createErr  error
	updateErr  error
	lastCreate service.CreateOrderInput
}

func (o *orders) summary(userID uuid.UUID) *service.OrderSummary {
	code := "123"
	return &service.OrderSummary{
		ID:         uuid.New(),
		Number:     "ORD-20250314-1234",
		OrderDate:  time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		PickupCode: &code,
		Status:     service.StatusNew,
		UserID:     userID,
		Lines: []service.OrderLineSummary{
			{ProductID: uuid.New(), Article: "A112T4", Quantity: 2, Price: decimal.RequireFromString("100.00")},
		},
	}
}

func (o *orders) CreateOrder(_ context.Context, in service.CreateOrderInput) (*service.OrderSummary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastCreate = in
	if o.createErr != nil {
		return nil, o.createErr
	}
	return o.summary(in.UserID), nil
}

func (o *orders) CreateSingleItemOrder(_ context.Context, userID, _ uuid.UUID, quantity int) (*service.OrderSummary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.quick = append(o.quick, quantity)
	return o.summary(userID), nil
}

func (o *orders) UpdateStatusAndDelivery(context.Context, service.UpdateStatusInput) (*service.OrderSummary, error) {
	if o.updateErr != nil {
		return nil, o.updateErr
	}
	return o.summary(uuid.New()), nil
}

func (o *orders) ListOrdersForUser(_ context.Context, login string) ([]service.OrderSummary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listedFor = append(o.listedFor, login)
	return []service.OrderSummary{}, nil
}

func (o *orders) ListAllOrders(context.Context) ([]service.OrderSummary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listedAll++
	return []service.OrderSummary{}, nil
}

func (o *orders) ListStatuses(context.Context) ([]service.StatusView, error) {
	return []service.StatusView{{ID: uuid.New(), Name: service.StatusNew}}, nil
}

// catalog remembers the last listing query.
type catalog struct {
	mu      sync.Mutex
	queries []service.ProductQuery
}

func (c *catalog) lastQuery() service.ProductQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queries) == 0 {
		return service.ProductQuery{}
	}
	return c.queries[len(c.queries)-1]
}

func (c *catalog) List(_ context.Context, q service.ProductQuery) (*service.ProductPage, error) {
	c.mu.Lock()
	c.queries = append(c.queries, q)
	c.mu.Unlock()
	return &service.ProductPage{Items: []service.ProductView{{
		ID: uuid.New(), Article: "A112T4", Name: "Boots",
		Price:       decimal.RequireFromString("100.00"),
		Discount:    10,
		FinalPrice:  decimal.RequireFromString("90.00"),
		HasDiscount: true,
		InStock:     true,
	}}, Total: 1}, nil
}

func (*catalog) GetByArticle(context.Context, string) (*service.ProductView, error) {
	return nil, service.ErrProductNotFound
}

func (*catalog) Create(context.Context, service.ProductInput) (*service.ProductView, error) {
	return &service.ProductView{ID: uuid.New()}, nil
}

func (*catalog) Update(context.Context, uuid.UUID, service.ProductInput) (*service.ProductView, error) {
	return nil, service.ErrArticleExists
}

func (*catalog) Delete(context.Context, uuid.UUID) error { return nil }

var (
	shoesID = uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000001")
	kariID  = uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000002")
)

func (*catalog) Categories(context.Context) ([]service.ReferenceItem, error) {
	return []service.ReferenceItem{{ID: shoesID, Name: "Shoes"}}, nil
}

func (*catalog) Manufacturers(context.Context) ([]service.ReferenceItem, error) {
	return []service.ReferenceItem{{ID: kariID, Name: "Kari"}}, nil
}

func (*catalog) Suppliers(context.Context) ([]service.ReferenceItem, error) {
	return nil, service.ErrStoreUnavailable
}

func (*catalog) Units(context.Context) ([]string, error) {
	return []string{"пара", "шт."}, nil
}

type env struct {
	engine  *gin.Engine
	orders  *orders
	catalog *catalog
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	mk := func(login, fullName, role string) models.User {
		return models.User{ID: uuid.New(), Login: login, FullName: fullName, Password: "secret", Role: models.Role{Name: role}}
	}
	dir := users{byLogin: map[string]models.User{
		"alice": mk("alice", "Alice Client", "Client"),
		"mgr":   mk("mgr", "Maria Manager", "Manager"),
	}}

	binder := session.NewBinder(&sessions{recs: map[string]session.Record{}}, 30*time.Minute)
	auth := service.NewAuthService(dir, hashing.NewPlain(), token.NewHSProvider("test-secret", "retail", "retail"), binder, time.Hour, log)
	o := &orders{}
	cat := &catalog{}

	engine := router.Router(router.Deps{
		Auth:    auth,
		Catalog: cat,
		Orders:  o,
		Policy:  service.NewPolicy(),
		Cookie:  handlers.CookieOptions{Name: "retail_session"},
	}, log)
	return &env{engine: engine, orders: o, catalog: cat}
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *env) login(t *testing.T, login string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"login":"`+login+`","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *env) webLogin(t *testing.T, login string) *http.Cookie {
	t.Helper()
	form := url.Values{"login": {login}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/web/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == "retail_session" {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func bearer(method, path, tok string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req
}

func TestAPI_LoginFailures(t *testing.T) {
	e := newEnv(t)

	req := bearer(http.MethodPost, "/api/auth/login", "", `{"login":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, e.do(req).Code)

	req = bearer(http.MethodPost, "/api/auth/login", "", `{"login":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, e.do(req).Code)
}

func TestAPI_AnonymousAccess(t *testing.T) {
	e := newEnv(t)

	w := e.do(bearer(http.MethodGet, "/api/products", "", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"final_price":"90.00"`)

	assert.Equal(t, http.StatusUnauthorized, e.do(bearer(http.MethodGet, "/api/orders", "", "")).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(bearer(http.MethodGet, "/api/orders", "garbage", "")).Code)
	assert.Equal(t, http.StatusNotFound, e.do(bearer(http.MethodGet, "/api/products/article/none", "", "")).Code)
}

func TestAPI_ProductFilters(t *testing.T) {
	e := newEnv(t)
	man := uuid.New()

	w := e.do(bearer(http.MethodGet, "/api/products", "", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ProductQuery{Limit: 50}, e.catalog.lastQuery())

	path := "/api/products?search=boot&description=leather&manufacturer_id=" + man.String() +
		"&max_price=99.90&only_discounted=true&in_stock=1&sort=supplier_desc&limit=5&offset=10"
	w = e.do(bearer(http.MethodGet, path, "", ""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	q := e.catalog.lastQuery()
	assert.Equal(t, "boot", q.Search)
	assert.Equal(t, "leather", q.Description)
	require.NotNil(t, q.ManufacturerID)
	assert.Equal(t, man, *q.ManufacturerID)
	require.NotNil(t, q.MaxPrice)
	assert.Equal(t, "99.90", q.MaxPrice.StringFixed(2))
	assert.True(t, q.OnlyDiscounted)
	assert.True(t, q.InStockOnly)
	assert.Equal(t, "supplier_desc", q.SortBy)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, 10, q.Offset)

	for _, sortBy := range []string{"name", "name_desc", "supplier", "supplier_desc", "price", "price_desc"} {
		w = e.do(bearer(http.MethodGet, "/api/products?sort="+sortBy, "", ""))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, sortBy, e.catalog.lastQuery().SortBy)
	}

	calls := len(e.catalog.queries)
	for _, bad := range []string{
		"manufacturer_id=kari",
		"max_price=cheap",
		"max_price=-1",
		"only_discounted=maybe",
		"limit=ten",
	} {
		w = e.do(bearer(http.MethodGet, "/api/products?"+bad, "", ""))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
	assert.Len(t, e.catalog.queries, calls)

	// the browser listing shares the same query string
	w = e.do(httptest.NewRequest(http.MethodGet, "/web/products?only_discounted=true&sort=price", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, e.catalog.lastQuery().OnlyDiscounted)
	assert.Equal(t, "price", e.catalog.lastQuery().SortBy)
	w = e.do(httptest.NewRequest(http.MethodGet, "/web/products?max_price=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_ProductFlags(t *testing.T) {
	e := newEnv(t)
	w := e.do(bearer(http.MethodGet, "/api/products", "", ""))
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ProductListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].HasDiscount)
	assert.False(t, resp.Items[0].HighDiscount)
	assert.True(t, resp.Items[0].InStock)
}

func TestAPI_References(t *testing.T) {
	e := newEnv(t)

	w := e.do(bearer(http.MethodGet, "/api/categories", "", ""))
	require.Equal(t, http.StatusOK, w.Code)
	var cats []dto.ReferenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	assert.Equal(t, []dto.ReferenceResponse{{ID: shoesID.String(), Name: "Shoes"}}, cats)

	for _, path := range []string{"/api/manufacturers", "/web/manufacturers"} {
		w = e.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
		var mans []dto.ReferenceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mans))
		assert.Equal(t, []dto.ReferenceResponse{{ID: kariID.String(), Name: "Kari"}}, mans)
	}

	w = e.do(bearer(http.MethodGet, "/api/units", "", ""))
	require.Equal(t, http.StatusOK, w.Code)
	var units []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &units))
	assert.Equal(t, []string{"пара", "шт."}, units)

	assert.Equal(t, http.StatusServiceUnavailable, e.do(bearer(http.MethodGet, "/api/suppliers", "", "")).Code)
}

func TestAPI_ClientScope(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t, "alice")

	assert.Equal(t, http.StatusOK, e.do(bearer(http.MethodGet, "/api/orders/user/alice", tok, "")).Code)
	assert.Equal(t, http.StatusForbidden, e.do(bearer(http.MethodGet, "/api/orders/user/bob", tok, "")).Code)
	assert.Equal(t, http.StatusForbidden, e.do(bearer(http.MethodGet, "/api/orders", tok, "")).Code)
	assert.Equal(t, http.StatusForbidden, e.do(bearer(http.MethodGet, "/api/order-statuses", tok, "")).Code)
	assert.Equal(t, http.StatusForbidden, e.do(bearer(http.MethodDelete, "/api/products/"+uuid.NewString(), tok, "")).Code)

	w := e.do(bearer(http.MethodPost, "/api/orders", tok, `{"items":[{"product_id":"`+uuid.NewString()+`","quantity":2}]}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "200.00", resp.Total)
	assert.Equal(t, "ORD-20250314-1234", resp.OrderNumber)
	require.Len(t, e.orders.lastCreate.Items, 1)
	assert.Equal(t, 2, e.orders.lastCreate.Items[0].Quantity)
}

func TestAPI_StaffScope(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t, "mgr")

	assert.Equal(t, http.StatusOK, e.do(bearer(http.MethodGet, "/api/orders", tok, "")).Code)
	assert.Equal(t, http.StatusOK, e.do(bearer(http.MethodGet, "/api/orders/user/alice", tok, "")).Code)
	assert.Equal(t, http.StatusOK, e.do(bearer(http.MethodGet, "/api/order-statuses", tok, "")).Code)
	assert.Equal(t, http.StatusNoContent, e.do(bearer(http.MethodDelete, "/api/products/"+uuid.NewString(), tok, "")).Code)
	assert.Equal(t, http.StatusForbidden, e.do(bearer(http.MethodPost, "/api/orders", tok, `{"items":[]}`)).Code)

	body := `{"status_id":"` + uuid.NewString() + `","delivery_date":"2025-03-01T00:00:00Z"}`
	e.orders.updateErr = service.ErrDeliveryBeforeOrder
	assert.Equal(t, http.StatusBadRequest, e.do(bearer(http.MethodPut, "/api/orders/ORD-20250314-1234", tok, body)).Code)
	e.orders.updateErr = service.ErrOrderNotFound
	assert.Equal(t, http.StatusNotFound, e.do(bearer(http.MethodPut, "/api/orders/ORD-00000000-0000", tok, body)).Code)
	e.orders.updateErr = nil
	assert.Equal(t, http.StatusOK, e.do(bearer(http.MethodPut, "/api/orders/ORD-20250314-1234", tok, body)).Code)

	assert.Equal(t, http.StatusConflict, e.do(bearer(http.MethodPut, "/api/products/"+uuid.NewString(), tok,
		`{"article":"B-1","name":"Boots","price":"10.00","category_id":"`+uuid.NewString()+
			`","manufacturer_id":"`+uuid.NewString()+`","supplier_id":"`+uuid.NewString()+`"}`)).Code)
}

func TestAPI_StoreFailureMapsTo503(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t, "alice")
	e.orders.createErr = service.ErrOrderNumberExhausted

	w := e.do(bearer(http.MethodPost, "/api/orders", tok, `{"items":[{"product_id":"`+uuid.NewString()+`","quantity":1}]}`))
	assert.Equal(t, http.StatusConflict, w.Code)

	e.orders.createErr = service.ErrStoreUnavailable
	w = e.do(bearer(http.MethodPost, "/api/orders", tok, `{"items":[{"product_id":"`+uuid.NewString()+`","quantity":1}]}`))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWeb_SessionFlow(t *testing.T) {
	e := newEnv(t)
	cookie := e.webLogin(t, "alice")

	req := httptest.NewRequest(http.MethodGet, "/web/orders", nil)
	req.AddCookie(cookie)
	require.Equal(t, http.StatusOK, e.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/web/products/"+uuid.NewString()+"/order", nil)
	req.AddCookie(cookie)
	require.Equal(t, http.StatusCreated, e.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/web/products/"+uuid.NewString()+"/order", strings.NewReader(`{"quantity":3}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	require.Equal(t, http.StatusCreated, e.do(req).Code)
	assert.Equal(t, []int{1, 3}, e.orders.quick)

	req = httptest.NewRequest(http.MethodPost, "/web/logout", nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusNoContent, e.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/web/orders", nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusUnauthorized, e.do(req).Code)
}

func TestWeb_QuickOrderChunkedBody(t *testing.T) {
	e := newEnv(t)
	cookie := e.webLogin(t, "alice")

	// a reader without a known size is sent chunked with ContentLength -1
	req := httptest.NewRequest(http.MethodPost, "/web/products/"+uuid.NewString()+"/order",
		io.MultiReader(strings.NewReader(`{"quantity":4}`)))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	require.Equal(t, int64(-1), req.ContentLength)
	require.Equal(t, http.StatusCreated, e.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/web/products/"+uuid.NewString()+"/order",
		io.MultiReader(strings.NewReader("")))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	require.Equal(t, http.StatusCreated, e.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/web/products/"+uuid.NewString()+"/order",
		io.MultiReader(strings.NewReader(`{"quantity":`)))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusBadRequest, e.do(req).Code)

	assert.Equal(t, []int{4, 1}, e.orders.quick)
}

func TestWeb_StaffSeesAllOrders(t *testing.T) {
	e := newEnv(t)
	cookie := e.webLogin(t, "mgr")

	req := httptest.NewRequest(http.MethodGet, "/web/orders", nil)
	req.AddCookie(cookie)
	require.Equal(t, http.StatusOK, e.do(req).Code)
	assert.Equal(t, 1, e.orders.listedAll)
	assert.Empty(t, e.orders.listedFor)

	req = httptest.NewRequest(http.MethodPost, "/web/products/"+uuid.NewString()+"/order", nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusForbidden, e.do(req).Code)
}

func TestBothSurfacesResolveSamePrincipal(t *testing.T) {
	e := newEnv(t)
	tok := e.login(t, "alice")
	cookie := e.webLogin(t, "alice")

	require.Equal(t, http.StatusOK, e.do(bearer(http.MethodGet, "/api/orders/user/alice", tok, "")).Code)
	req := httptest.NewRequest(http.MethodGet, "/web/orders", nil)
	req.AddCookie(cookie)
	require.Equal(t, http.StatusOK, e.do(req).Code)

	assert.Equal(t, []string{"alice", "alice"}, e.orders.listedFor)
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

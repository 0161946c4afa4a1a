package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/rpc"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/eckodoo/internal/logger"
	"github.com/xelth-com/eckodoo/internal/mock"
	"github.com/xelth-com/eckodoo/internal/services/odoo"
	"github.com/xelth-com/eckodoo/internal/utils"
	"go.uber.org/mock/gomock"
)

const (
	jwtSecret    = "handlers-test-secret"
	odooPassword = "s3cret-odoo-pw"
)

type fixture struct {
	handler http.Handler
	client  *odoo.Client
	caller  *mock.MockCaller
	token   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	caller := mock.NewMockCaller(ctrl)
	caller.EXPECT().Close().Return(nil).AnyTimes()

	client, err := odoo.NewClient(
		odoo.WithBaseURL("https://erp.example.com"),
		odoo.WithDatabase("testdb"),
		odoo.WithUsername("gateway"),
		odoo.WithPassword(odooPassword),
		odoo.WithDialer(func(string) (odoo.Caller, error) { return caller, nil }),
	)
	require.NoError(t, err)

	token, err := utils.GenerateToken("tester", jwtSecret, time.Hour)
	require.NoError(t, err)

	return &fixture{
		handler: NewRouter(client, jwtSecret, logger.Nop()).Handler(),
		client:  client,
		caller:  caller,
		token:   token,
	}
}

func answer(v interface{}) func(string, interface{}, interface{}) error {
	return func(_ string, _ interface{}, reply interface{}) error {
		reflect.ValueOf(reply).Elem().Set(reflect.ValueOf(v))
		return nil
	}
}

// expectExecute expects one execute_kw call of method, checks its positional
// and keyword arguments with check and answers v.
func (f *fixture) expectExecute(method string, check func(args []interface{}), v interface{}) {
	f.caller.EXPECT().Call("execute_kw", gomock.Any(), gomock.Any()).DoAndReturn(
		func(m string, args interface{}, reply interface{}) error {
			list := args.([]interface{})
			if list[4] != method {
				return errors.New("unexpected method " + list[4].(string))
			}
			if check != nil {
				check(list)
			}
			return answer(v)(m, args, reply)
		},
	)
}

func (f *fixture) connected(t *testing.T) {
	t.Helper()
	f.caller.EXPECT().Call("authenticate", gomock.Any(), gomock.Any()).DoAndReturn(answer(int64(2)))
	_, err := f.client.Connect()
	require.NoError(t, err)
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth_NoAuthRequired(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Build  struct {
			Version string `json:"version"`
		} `json:"build"`
		Odoo struct {
			URL       string `json:"url"`
			Database  string `json:"database"`
			Connected bool   `json:"connected"`
		} `json:"odoo"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Build.Version)
	assert.Equal(t, "https://erp.example.com:443", body.Odoo.URL)
	assert.Equal(t, "testdb", body.Odoo.Database)
	assert.False(t, body.Odoo.Connected)
	assert.NotContains(t, rec.Body.String(), odooPassword)
}

func TestOdooRoutes_RequireToken(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/odoo/res.partner?ids=1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreate_ConnectsLazily(t *testing.T) {
	f := newFixture(t)

	f.caller.EXPECT().Call("authenticate", gomock.Any(), gomock.Any()).DoAndReturn(answer(int64(2)))
	f.expectExecute("create", func(args []interface{}) {
		assert.Equal(t, int64(2), args[1])
		assert.Equal(t, "res.partner", args[3])
		values := args[5].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "Deco Addict", values["name"])
		assert.Equal(t, int64(3), values["company_id"], "integral JSON numbers stay integers")
	}, int64(42))

	rec := f.do(http.MethodPost, "/api/odoo/res.partner", `{"name":"Deco Addict","company_id":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]int64
	decodeBody(t, rec, &body)
	assert.Equal(t, int64(42), body["id"])
	assert.Equal(t, int64(2), f.client.UID())
}

func TestCreate_InvalidPayload(t *testing.T) {
	f := newFixture(t)

	for _, payload := range []string{``, `[1,2]`, `{"name":`} {
		rec := f.do(http.MethodPost, "/api/odoo/res.partner", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}
}

func TestRead(t *testing.T) {
	f := newFixture(t)
	f.connected(t)

	f.expectExecute("read", func(args []interface{}) {
		assert.Equal(t, []interface{}{[]int64{7, 9}}, args[5])
		assert.Equal(t, map[string]interface{}{"fields": []string{"name", "email"}}, args[6])
	}, []map[string]interface{}{{"id": int64(7), "name": "Azure Interior", "email": false}})

	rec := f.do(http.MethodGet, "/api/odoo/res.partner?ids=7,9&fields=name,email", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var records []map[string]interface{}
	decodeBody(t, rec, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "Azure Interior", records[0]["name"])
}

func TestRead_BadIDs(t *testing.T) {
	f := newFixture(t)
	f.connected(t)

	rec := f.do(http.MethodGet, "/api/odoo/res.partner?ids=7,x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/odoo/res.partner", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "ids", body["field"])
	assert.Contains(t, body["error"], "record ID is required")
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	f.connected(t)

	f.expectExecute("write", func(args []interface{}) {
		assert.Equal(t, []int64{7}, args[5].([]interface{})[0])
	}, true)
	rec := f.do(http.MethodPut, "/api/odoo/res.partner/7", `{"email":"new@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"updated":true}`, rec.Body.String())

	f.expectExecute("unlink", func(args []interface{}) {
		assert.Equal(t, []interface{}{[]int64{7}}, args[5])
	}, true)
	rec = f.do(http.MethodDelete, "/api/odoo/res.partner/7", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"deleted":true}`, rec.Body.String())
}

func TestSearch_FilterObject(t *testing.T) {
	f := newFixture(t)
	f.connected(t)

	f.expectExecute("search", func(args []interface{}) {
		assert.Equal(t, []interface{}{[]interface{}{
			[]interface{}{"customer_rank", "=", int64(1)},
			[]interface{}{"is_company", "=", true},
		}}, args[5])
		assert.Equal(t, map[string]interface{}{"limit": 5, "offset": 10, "order": "name"}, args[6])
	}, []int64{3, 4})

	rec := f.do(http.MethodPost, "/api/odoo/res.partner/search",
		`{"domain":{"is_company":true,"customer_rank":1},"limit":5,"offset":10,"order":"name"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[3,4]`, rec.Body.String())
}

func TestSearchRead_DomainArray(t *testing.T) {
	f := newFixture(t)
	f.connected(t)

	f.expectExecute("search_read", func(args []interface{}) {
		assert.Equal(t, []interface{}{[]interface{}{
			"|",
			[]interface{}{"name", "ilike", "deco"},
			[]interface{}{"email", "=like", "%@example.com"},
		}}, args[5])
		assert.Equal(t, map[string]interface{}{"fields": []string{"name"}, "limit": 1}, args[6])
	}, []map[string]interface{}{{"id": int64(3), "name": "Deco Addict"}})

	rec := f.do(http.MethodPost, "/api/odoo/res.partner/search_read",
		`{"domain":["|",["name","ilike","deco"],["email","=like","%@example.com"]],"fields":["name"],"limit":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[{"id":3,"name":"Deco Addict"}]`, rec.Body.String())
}

func TestSearchRead_InvalidLimit(t *testing.T) {
	f := newFixture(t)
	f.connected(t)

	rec := f.do(http.MethodPost, "/api/odoo/res.partner/search_read", `{"limit":-1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "limit", body["field"])
}

func TestSearch_BadRequests(t *testing.T) {
	f := newFixture(t)

	for _, payload := range []string{
		`{"domain":"name"}`,
		`{"domain":[["name","="]]}`,
		`{"domain":["xor"]}`,
		`{"limit":"ten"}`,
		`{"limit":1.5}`,
		`{"order":5}`,
		`{"fields":"name"}`,
	} {
		rec := f.do(http.MethodPost, "/api/odoo/res.partner/search_read", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}
}

func TestCount(t *testing.T) {
	f := newFixture(t)
	f.connected(t)

	f.expectExecute("search_count", nil, int64(12))

	rec := f.do(http.MethodPost, "/api/odoo/res.partner/count", `{}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"count":12}`, rec.Body.String())
}

func TestFieldsGet(t *testing.T) {
	f := newFixture(t)
	f.connected(t)

	f.expectExecute("fields_get", func(args []interface{}) {
		assert.Equal(t, map[string]interface{}{"attributes": []string{"type"}}, args[6])
	}, map[string]interface{}{"name": map[string]interface{}{"type": "char"}})

	rec := f.do(http.MethodGet, "/api/odoo/res.partner/fields?attributes=type", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"name":{"type":"char"}}`, rec.Body.String())
}

func TestErrorMapping(t *testing.T) {
	t.Run("authentication", func(t *testing.T) {
		f := newFixture(t)
		f.caller.EXPECT().Call("authenticate", gomock.Any(), gomock.Any()).DoAndReturn(answer(false))

		rec := f.do(http.MethodPost, "/api/odoo/res.partner/count", `{}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "authentication failed")
		assert.NotContains(t, rec.Body.String(), odooPassword)
	})

	t.Run("remote fault", func(t *testing.T) {
		f := newFixture(t)
		f.connected(t)
		f.caller.EXPECT().Call("execute_kw", gomock.Any(), gomock.Any()).
			Return(rpc.ServerError("Object x.missing doesn't exist; login with " + odooPassword))

		rec := f.do(http.MethodPost, "/api/odoo/x.missing/count", `{}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "x.missing")
		assert.NotContains(t, rec.Body.String(), odooPassword)
	})
}

func TestRoutes_CaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.connected(t)

	f.expectExecute("search_count", func(args []interface{}) {
		assert.Equal(t, "res.partner", args[3])
	}, int64(0))

	rec := f.do(http.MethodPost, "/API/Odoo/Res.Partner/Count", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

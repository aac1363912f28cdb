package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/voicehub/pkg/domain"
)

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
		wantField    string
	}{
		{name: "defaults", query: "", wantPage: 1, wantPageSize: 20},
		{name: "explicit", query: "page=3&pageSize=20", wantPage: 3, wantPageSize: 20},
		{name: "clamped", query: "pageSize=500", wantPage: 1, wantPageSize: 100},
		{name: "zero page", query: "page=0", wantField: "page"},
		{name: "negative pageSize", query: "pageSize=-5", wantField: "pageSize"},
		{name: "non-integer page", query: "page=abc", wantField: "page"},
		{name: "non-integer pageSize", query: "pageSize=1.5", wantField: "pageSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
			req, err := ParsePageRequest(r)
			if tt.wantField != "" {
				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
				assert.Equal(t, tt.wantField, verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, req.Page)
			assert.Equal(t, tt.wantPageSize, req.PageSize)
		})
	}
}

func TestOptionalUUID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	id, err := OptionalUUID(r, "agent_id")
	require.NoError(t, err)
	assert.Nil(t, id)

	r = httptest.NewRequest(http.MethodGet, "/x?agent_id=6f1c2f1e-8f0a-4c7e-9a57-1f1d2a3b4c5d", nil)
	id, err = OptionalUUID(r, "agent_id")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "6f1c2f1e-8f0a-4c7e-9a57-1f1d2a3b4c5d", id.String())

	r = httptest.NewRequest(http.MethodGet, "/x?agent_id=nope", nil)
	_, err = OptionalUUID(r, "agent_id")
	assert.ErrorContains(t, err, "agent_id")
}

func TestSearchParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?search=%20acme%07%20", nil)
	search, err := SearchParam(r, "search")
	require.NoError(t, err)
	assert.Equal(t, "acme", search)

	r = httptest.NewRequest(http.MethodGet, "/x?search="+strings.Repeat("a", MaxSearchLength+1), nil)
	_, err = SearchParam(r, "search")
	assert.ErrorContains(t, err, "search")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{name: "header", header: "Bearer abc", want: "abc"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "cookie fallback", cookie: "from-cookie", want: "from-cookie"},
		{name: "header wins", header: "Bearer abc", cookie: "from-cookie", want: "abc"},
		{name: "basic scheme ignored", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "empty bearer falls back", header: "Bearer ", cookie: "from-cookie", want: "from-cookie"},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, BearerToken(r))
		})
	}
}

func TestNewListResponse(t *testing.T) {
	resp := NewListResponse([]int{41, 42, 43, 44, 45}, 45, domain.NewPageRequest(3, 20))
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
	assert.Len(t, resp.Data, 5)

	empty := NewListResponse[int](nil, 0, domain.NewPageRequest(1, 20))
	assert.Equal(t, 0, empty.TotalPages)

	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, empty)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []any{}, body["data"])
	assert.EqualValues(t, 20, body["pageSize"])
	assert.EqualValues(t, 0, body["totalPages"])
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Unauthorized(rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

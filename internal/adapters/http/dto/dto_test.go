package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/lingo-service/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMapFailure(t *testing.T) {
	tree := domain.ValidationTree{}
	tree.AddField("name", domain.Violation{Code: domain.CodeNameLimit})

	tests := []struct {
		name       string
		failure    domain.Failure
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid body",
			failure:    &domain.InvalidBodyError{},
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.CodeInvalidBody,
		},
		{
			name:       "validation",
			failure:    &domain.ValidationError{Tree: tree},
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.CodeValidationFailed,
		},
		{
			name:       "business keeps its status",
			failure:    domain.NewBusinessError(http.StatusConflict, "error.business.taken", nil),
			wantStatus: http.StatusConflict,
			wantCode:   "error.business.taken",
		},
		{
			name:       "business outside client range",
			failure:    domain.NewBusinessError(http.StatusOK, "error.business.odd", nil),
			wantStatus: http.StatusBadRequest,
			wantCode:   "error.business.odd",
		},
		{
			name:       "business with server status",
			failure:    domain.NewBusinessError(http.StatusBadGateway, "error.business.odd", nil),
			wantStatus: http.StatusBadRequest,
			wantCode:   "error.business.odd",
		},
		{
			name:       "dependency",
			failure:    domain.NewDependencyError(domain.DependencyDatabase, errors.New("down")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   domain.CodeDependencyUnavailable,
		},
		{
			name:       "timeout",
			failure:    &domain.TimeoutError{},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   domain.CodeTimeout,
		},
		{
			name:       "overloaded",
			failure:    &domain.OverloadedError{Reason: "rate"},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   domain.CodeServiceUnavailable,
		},
		{
			name:       "internal",
			failure:    &domain.InternalError{Cause: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   domain.CodeInternal,
		},
		{
			name:       "nil failure",
			failure:    nil,
			wantStatus: http.StatusInternalServerError,
			wantCode:   domain.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, node := MapFailure(tt.failure)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, node.Code)
		})
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "business error with args",
			err:        domain.NewUserNotFoundError(uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":"error.business.user_not_found","args":{"id":"550e8400-e29b-41d4-a716-446655440000"}}`,
		},
		{
			name:       "unknown error hides cause",
			err:        errors.New("pq: password authentication failed"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":"error.internal_error"}`,
		},
		{
			name:       "wrapped dependency error",
			err:        errors.Join(errors.New("ctx"), domain.NewDependencyError(domain.DependencyCache, nil)),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"code":"error.dependency_unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondWithError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Len(t, c.Errors, 1)
			assert.False(t, c.IsAborted())
		})
	}
}

func TestAbortWithError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	AbortWithError(c, &domain.OverloadedError{Reason: "concurrency"})

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"code":"error.service_unavailable"}`, w.Body.String())
}

func TestAbortWithError_NilError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	AbortWithError(c, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, c.Errors)
}

func TestValidator(t *testing.T) {
	v1 := Validator()
	v2 := Validator()

	assert.NotNil(t, v1)
	assert.Same(t, v1, v2)
}

type geo struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
}

type address struct {
	Street string `json:"street" validate:"required"`
	Geo    geo    `json:"geo"`
}

type item struct {
	SKU string `json:"sku" validate:"required"`
	Qty int    `json:"qty" validate:"gt=0"`
}

type order struct {
	Name    string   `json:"name" validate:"min=1,max=10" errcode:"error.business.name_limit"`
	Address address  `json:"address"`
	Items   []item   `json:"items" validate:"dive"`
	Tags    []string `json:"tags" validate:"dive,max=3"`
	Note    string   `json:"note" validate:"max=5"`
}

func invalidOrder() *order {
	return &order{
		Name:    "",
		Address: address{Street: "", Geo: geo{Lat: 100}},
		Items:   []item{{SKU: "", Qty: 1}, {SKU: "x", Qty: 0}},
		Tags:    []string{"ok", "toolong"},
		Note:    "toolong",
	}
}

func TestValidationTreeFrom_MirrorsRequestShape(t *testing.T) {
	o := invalidOrder()

	tree := ValidationTreeFrom(o, Validator().Struct(o))

	require.Len(t, tree.Entries, 5)
	assert.Equal(t, domain.EntryField, tree.Entries[0].Kind)
	assert.Equal(t, "name", tree.Entries[0].Field)
	assert.Equal(t, domain.EntryStruct, tree.Entries[1].Kind)
	assert.Equal(t, "address", tree.Entries[1].Field)
	assert.Equal(t, domain.EntryList, tree.Entries[2].Kind)
	assert.Equal(t, "items", tree.Entries[2].Field)
	assert.Equal(t, domain.EntryList, tree.Entries[3].Kind)
	assert.Equal(t, domain.EntryField, tree.Entries[4].Kind)

	items := tree.Entries[2].Items
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Index)
	assert.Equal(t, 1, items[1].Index)

	assert.Equal(t, 7, tree.Count())
}

func TestValidationTreeFrom_FlattenedCodesAndArgs(t *testing.T) {
	o := invalidOrder()

	nodes := domain.Flatten(ValidationTreeFrom(o, Validator().Struct(o)))

	codes := make([]string, 0, len(nodes))
	for _, n := range nodes {
		codes = append(codes, n.Code)
	}

	assert.Equal(t, []string{
		domain.CodeNameLimit,
		"error.validation.required",
		"error.validation.lte",
		"error.validation.required",
		"error.validation.gt",
		"error.validation.max",
		"error.validation.max",
	}, codes)

	assert.Equal(t, map[string]string{
		"field": "name",
		"param": "1",
		"min":   "1",
		"max":   "10",
	}, nodes[0].Args)

	assert.Equal(t, "street", nodes[1].Args["field"])
	assert.Equal(t, "90", nodes[2].Args["lte"])
	assert.Equal(t, "-90", nodes[2].Args["gte"])
	assert.Equal(t, "3", nodes[5].Args["max"])
	assert.Equal(t, "5", nodes[6].Args["max"])
}

func TestValidationTreeFrom_NonValidatorError(t *testing.T) {
	tree := ValidationTreeFrom(&order{}, errors.New("other"))
	assert.True(t, tree.Empty())
}

func TestDeclaredBounds(t *testing.T) {
	assert.Equal(t, map[string]string{"min": "1", "max": "10"}, declaredBounds("required,min=1,max=10", false))
	assert.Equal(t, map[string]string{"min": "2"}, declaredBounds("min=2,dive,max=3", false))
	assert.Equal(t, map[string]string{"max": "3"}, declaredBounds("min=2,dive,max=3", true))
	assert.Empty(t, declaredBounds("oneof=a b,email", false))
}

func TestCutIndex(t *testing.T) {
	name, index, ok := cutIndex("items[12]")
	assert.Equal(t, "items", name)
	assert.Equal(t, 12, index)
	assert.True(t, ok)

	name, _, ok = cutIndex("attrs[color]")
	assert.Equal(t, "attrs[color]", name)
	assert.False(t, ok)

	name, _, ok = cutIndex("plain")
	assert.Equal(t, "plain", name)
	assert.False(t, ok)
}

func TestCutKey(t *testing.T) {
	name, ok := cutKey("Meta[color]")
	assert.Equal(t, "Meta", name)
	assert.True(t, ok)

	name, ok = cutKey("Items[3]")
	assert.Equal(t, "Items", name)
	assert.True(t, ok)

	name, ok = cutKey("Meta")
	assert.Equal(t, "Meta", name)
	assert.False(t, ok)
}

type labeled struct {
	Meta map[string]string `json:"meta" validate:"dive,max=1" errcode:"error.business.label_limit"`
}

func TestValidationTreeFrom_MapElements(t *testing.T) {
	l := &labeled{Meta: map[string]string{"k": "long"}}

	nodes := domain.Flatten(ValidationTreeFrom(l, Validator().Struct(l)))

	require.Len(t, nodes, 1)
	assert.Equal(t, "error.business.label_limit", nodes[0].Code)
	assert.Equal(t, "1", nodes[0].Args["max"])
	assert.Equal(t, "1", nodes[0].Args["param"])
}

type reservedName struct {
	Name string `json:"name" validate:"required"`
}

func (r *reservedName) Validate(tree *domain.ValidationTree) {
	if r.Name == "admin" {
		tree.AddField("name", domain.Violation{Code: "error.business.name_reserved"})
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, Validate(&reservedName{Name: "alice"}))
	})

	t.Run("tag violation", func(t *testing.T) {
		err := Validate(&reservedName{})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, 1, verr.Tree.Count())
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("custom violation", func(t *testing.T) {
		err := Validate(&reservedName{Name: "admin"})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)

		node := verr.Node()
		require.Len(t, node.Children, 1)
		assert.Equal(t, "error.business.name_reserved", node.Children[0].Code)
	})

	t.Run("not a struct", func(t *testing.T) {
		err := Validate("string")
		require.Error(t, err)
		assert.False(t, domain.IsValidation(err))
	})
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		checkErr  func(error) bool
		wantChild string
	}{
		{
			name: "valid JSON",
			body: `{"name":"John"}`,
		},
		{
			name:     "invalid JSON",
			body:     `{invalid}`,
			wantErr:  true,
			checkErr: func(err error) bool { return errors.Is(err, domain.ErrInvalidBody) },
		},
		{
			name:     "empty body",
			body:     ``,
			wantErr:  true,
			checkErr: func(err error) bool { return errors.Is(err, domain.ErrInvalidBody) },
		},
		{
			name:      "empty name",
			body:      `{"name":""}`,
			wantErr:   true,
			checkErr:  domain.IsValidation,
			wantChild: domain.CodeNameLimit,
		},
		{
			name:      "name too long",
			body:      `{"name":"abcdefghijk"}`,
			wantErr:   true,
			checkErr:  domain.IsValidation,
			wantChild: domain.CodeNameLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var input CreateUserRequest
			err := BindAndValidate(c, &input)

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "John", input.Name)

				return
			}

			require.Error(t, err)
			assert.True(t, tt.checkErr(err))

			if tt.wantChild != "" {
				_, node := MapError(err)
				require.Len(t, node.Children, 1)
				assert.Equal(t, tt.wantChild, node.Children[0].Code)
				assert.Equal(t, "1", node.Children[0].Args["min"])
				assert.Equal(t, "10", node.Children[0].Args["max"])
			}
		})
	}
}

func TestBindQueryAndValidate(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?name="+strings.Repeat("x", 65), nil)

	var q GreetingQuery
	err := BindQueryAndValidate(c, &q)
	require.True(t, domain.IsValidation(err))

	c.Request = httptest.NewRequest(http.MethodGet, "/?name=world", nil)
	require.NoError(t, BindQueryAndValidate(c, &q))
	assert.Equal(t, "world", q.Name)
}

func TestBindURIAndValidate(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	var p UserIDParam
	err := BindURIAndValidate(c, &p)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "error.validation.uuid", verr.Node().Children[0].Code)

	id := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	p = UserIDParam{}
	require.NoError(t, BindURIAndValidate(c, &p))
	assert.Equal(t, id, p.UUID())
}

func TestValidateUUID(t *testing.T) {
	type testStruct struct {
		ID string `validate:"uuid"`
	}

	tests := []struct {
		name    string
		uuid    string
		wantErr bool
	}{
		{name: "valid UUID", uuid: "123e4567-e89b-12d3-a456-426614174000"},
		{name: "invalid UUID", uuid: "not-a-uuid", wantErr: true},
		{name: "empty UUID is valid", uuid: ""},
		{name: "UUID without hyphens is valid", uuid: "123e4567e89b12d3a456426614174000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validator().Struct(&testStruct{ID: tt.uuid})

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNotEmpty(t *testing.T) {
	type testStruct struct {
		Name string `validate:"notempty"`
	}

	assert.NoError(t, Validator().Struct(&testStruct{Name: "x"}))
	assert.Error(t, Validator().Struct(&testStruct{Name: "   "}))
}

func TestUserResponses_JSON(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	data, err := json.Marshal(UserFromDomain(&domain.User{ID: id, Name: "alice"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"550e8400-e29b-41d4-a716-446655440000","name":"alice"}`, string(data))

	data, err = json.Marshal(DeleteUserResponse{AffectedRows: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"affected_rows":1}`, string(data))
}

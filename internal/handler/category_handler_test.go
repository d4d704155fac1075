package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/service"
	"github.com/dafibh/tally/tally-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categoryHandlerFixture struct {
	categories *testutil.MockChargeCategoryRepository
	charges    *testutil.MockChargeRepository
	orders     *testutil.MockCategoryOrderRepository
	icons      *testutil.MockIconRepository
	handler    *CategoryHandler

	food, salary, travel *domain.ChargeCategory
}

// newCategoryHandlerFixture seeds user 1 with the Food and Salary defaults, a
// custom Travel category and membership of team 5
func newCategoryHandlerFixture(withIcons bool) *categoryHandlerFixture {
	f := &categoryHandlerFixture{
		categories: testutil.NewMockChargeCategoryRepository(),
		charges:    testutil.NewMockChargeRepository(),
		orders:     testutil.NewMockCategoryOrderRepository(),
		icons:      testutil.NewMockIconRepository(),
	}
	teams := testutil.NewMockTeamRepository()
	teams.AddTeam(&domain.Team{ID: 5, Name: "Flat", Status: domain.StatusActive}, 1)

	personal := domain.PersonalScope(1)
	f.food = f.categories.AddCategory(&domain.ChargeCategory{Scope: personal.Defaults(), Name: "Food", Icon: "food", Polarity: domain.PolarityExpense})
	f.salary = f.categories.AddCategory(&domain.ChargeCategory{Scope: personal.Defaults(), Name: "Salary", Icon: "salary", Polarity: domain.PolarityIncome})
	f.travel = f.categories.AddCategory(&domain.ChargeCategory{Scope: personal, Name: "Travel", Icon: "plane", Polarity: domain.PolarityExpense})

	var icons *service.IconService
	if withIcons {
		icons = service.NewIconService(f.icons)
	} else {
		icons = service.NewIconService(nil)
	}
	orderSvc := service.NewCategoryOrderService(f.categories, f.orders)
	categorySvc := service.NewChargeCategoryService(f.categories, f.charges, orderSvc, icons)
	f.handler = NewCategoryHandler(service.NewScopeService(teams), categorySvc, orderSvc, icons)
	return f
}

func newJSONContext(method, target, body string, userID int32) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|test", userID)
	return c, rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestListCategories_OrdersDefaultsThenCustoms(t *testing.T) {
	f := newCategoryHandlerFixture(false)

	c, rec := newJSONContext(http.MethodGet, "/api/v1/categories?polarity=expense", "", 1)
	require.NoError(t, f.handler.ListCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response []CategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.Equal(t, "Food", response[0].Name)
	assert.True(t, response[0].IsDefault)
	assert.Equal(t, "Travel", response[1].Name)
	assert.Equal(t, "plane", response[1].IconURL)
	assert.Equal(t, "expense", response[1].Polarity)

	assert.Equal(t, domain.Permutation{f.food.ID, f.travel.ID}, f.orders.IDs(domain.PersonalScope(1), domain.PolarityExpense))
}

func TestListCategories_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		target string
		userID int32
		status int
	}{
		{"missing polarity", "/api/v1/categories", 1, http.StatusBadRequest},
		{"unknown polarity", "/api/v1/categories?polarity=both", 1, http.StatusBadRequest},
		{"no user", "/api/v1/categories?polarity=expense", 0, http.StatusUnauthorized},
		{"bad team id", "/api/v1/categories?polarity=expense&teamId=x", 1, http.StatusBadRequest},
		{"unknown team", "/api/v1/categories?polarity=expense&teamId=9", 1, http.StatusNotFound},
		{"not a member", "/api/v1/categories?polarity=expense&teamId=5", 2, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCategoryHandlerFixture(false)
			c, rec := newJSONContext(http.MethodGet, tt.target, "", tt.userID)
			require.NoError(t, f.handler.ListCategories(c))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestListCategories_TeamFromHeader(t *testing.T) {
	f := newCategoryHandlerFixture(false)
	team := domain.TeamScope(5)
	f.categories.AddCategory(&domain.ChargeCategory{Scope: team.Defaults(), Name: "Rent", Icon: "home", Polarity: domain.PolarityExpense})

	c, rec := newJSONContext(http.MethodGet, "/api/v1/categories?polarity=expense", "", 1)
	c.Request().Header.Set(TeamIDHeader, "5")
	require.NoError(t, f.handler.ListCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response []CategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "Rent", response[0].Name)
}

func TestCreateCategory_AppendsToOrder(t *testing.T) {
	f := newCategoryHandlerFixture(false)
	personal := domain.PersonalScope(1)
	f.orders.SetOrder(personal, domain.PolarityExpense, domain.Permutation{f.food.ID, f.travel.ID})

	c, rec := newJSONContext(http.MethodPost, "/api/v1/categories", `{"name":"Coffee","icon":"cup","polarity":"expense"}`, 1)
	require.NoError(t, f.handler.CreateCategory(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var response CategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Coffee", response.Name)
	assert.False(t, response.IsDefault)
	assert.NotEmpty(t, response.Key)

	assert.Equal(t, domain.Permutation{f.food.ID, f.travel.ID, response.ID}, f.orders.IDs(personal, domain.PolarityExpense))
}

func TestCreateCategory_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid json", `{"name":`, http.StatusBadRequest},
		{"bad polarity", `{"name":"Coffee","icon":"cup","polarity":"maybe"}`, http.StatusBadRequest},
		{"empty name", `{"name":"  ","icon":"cup","polarity":"expense"}`, http.StatusBadRequest},
		{"long name", `{"name":"` + strings.Repeat("x", 51) + `","icon":"cup","polarity":"expense"}`, http.StatusBadRequest},
		{"no icon", `{"name":"Coffee","polarity":"expense"}`, http.StatusBadRequest},
		{"uploaded icon path", `{"name":"Coffee","icon":"icons/personal/1/x.png","polarity":"expense"}`, http.StatusBadRequest},
		{"clashes with default", `{"name":"Food","icon":"cup","polarity":"expense"}`, http.StatusConflict},
		{"clashes with custom", `{"name":"Travel","icon":"cup","polarity":"expense"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCategoryHandlerFixture(false)
			c, rec := newJSONContext(http.MethodPost, "/api/v1/categories", tt.body, 1)
			require.NoError(t, f.handler.CreateCategory(c))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCreateCategory_LimitReached(t *testing.T) {
	f := newCategoryHandlerFixture(false)
	personal := domain.PersonalScope(1)
	for i := 1; i < domain.MaxCustomCategories; i++ {
		f.categories.AddCategory(&domain.ChargeCategory{Scope: personal, Name: "c" + string(rune('a'+i)), Icon: "x", Polarity: domain.PolarityExpense})
	}

	c, rec := newJSONContext(http.MethodPost, "/api/v1/categories", `{"name":"One more","icon":"cup","polarity":"expense"}`, 1)
	require.NoError(t, f.handler.CreateCategory(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Custom category limit reached", decodeProblem(t, rec).Detail)
}

func TestGetCategory(t *testing.T) {
	f := newCategoryHandlerFixture(false)

	c, rec := newJSONContext(http.MethodGet, "/", "", 1)
	require.NoError(t, f.handler.GetCategory(withID(c, "1")))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(http.MethodGet, "/", "", 2)
	require.NoError(t, f.handler.GetCategory(withID(c, "3")))
	assert.Equal(t, http.StatusNotFound, rec.Code, "another user's custom category is invisible")

	c, rec = newJSONContext(http.MethodGet, "/", "", 1)
	require.NoError(t, f.handler.GetCategory(withID(c, "abc")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCategory(t *testing.T) {
	f := newCategoryHandlerFixture(false)

	c, rec := newJSONContext(http.MethodPut, "/", `{"name":"Trips","icon":"plane"}`, 1)
	require.NoError(t, f.handler.UpdateCategory(withID(c, "3")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Trips", f.categories.Categories[f.travel.ID].Name)

	c, rec = newJSONContext(http.MethodPut, "/", `{"name":"Groceries","icon":"cart"}`, 1)
	require.NoError(t, f.handler.UpdateCategory(withID(c, "1")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteCategory_CascadesCharges(t *testing.T) {
	f := newCategoryHandlerFixture(false)
	personal := domain.PersonalScope(1)
	f.charges.AddCharge(&domain.ChargeRecord{Scope: personal, CategoryKey: f.travel.Key})

	c, rec := newJSONContext(http.MethodDelete, "/", "", 1)
	require.NoError(t, f.handler.DeleteCategory(withID(c, "3")))
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, domain.StatusDeleted, f.categories.Categories[f.travel.ID].Status)
	for _, charge := range f.charges.Charges {
		assert.Equal(t, domain.StatusDeleted, charge.Status)
	}
}

func TestDeleteCategory_PartialFailure(t *testing.T) {
	f := newCategoryHandlerFixture(false)
	personal := domain.PersonalScope(1)
	ok := f.charges.AddCharge(&domain.ChargeRecord{Scope: personal, CategoryKey: f.travel.Key})
	stuck := f.charges.AddCharge(&domain.ChargeRecord{Scope: personal, CategoryKey: f.travel.Key})
	f.charges.SoftDeleteFn = func(scope domain.Scope, id int32) error {
		if id == stuck.ID {
			return errors.New("connection reset")
		}
		f.charges.Charges[id].Status = domain.StatusDeleted
		return nil
	}

	c, rec := newJSONContext(http.MethodDelete, "/", "", 1)
	require.NoError(t, f.handler.DeleteCategory(withID(c, "3")))
	require.Equal(t, http.StatusMultiStatus, rec.Code)

	var response PartialFailureDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, []int32{stuck.ID}, response.FailedRecordIDs)
	assert.Equal(t, domain.StatusDeleted, f.charges.Charges[ok.ID].Status)
	assert.Equal(t, domain.StatusDeleted, f.categories.Categories[f.travel.ID].Status)
}

func TestDeleteCategory_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"default", "1", http.StatusForbidden},
		{"missing", "99", http.StatusNotFound},
		{"bad id", "-3", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCategoryHandlerFixture(false)
			c, rec := newJSONContext(http.MethodDelete, "/", "", 1)
			require.NoError(t, f.handler.DeleteCategory(withID(c, tt.id)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestReorderCategories(t *testing.T) {
	f := newCategoryHandlerFixture(false)
	personal := domain.PersonalScope(1)
	f.orders.SetOrder(personal, domain.PolarityExpense, domain.Permutation{f.food.ID, f.travel.ID})

	c, rec := newJSONContext(http.MethodPost, "/api/v1/categories/order", `{"polarity":"expense","originId":3,"afterId":0}`, 1)
	require.NoError(t, f.handler.ReorderCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response ReorderCategoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "expense", response.Polarity)
	assert.Equal(t, []int32{f.travel.ID, f.food.ID}, response.IDs)
	assert.Equal(t, domain.Permutation{f.travel.ID, f.food.ID}, f.orders.IDs(personal, domain.PolarityExpense))
}

func TestReorderCategories_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setOrder bool
		status   int
	}{
		{"origin not in order", `{"polarity":"expense","originId":42,"afterId":1}`, true, http.StatusBadRequest},
		{"no order yet", `{"polarity":"expense","originId":3,"afterId":1}`, false, http.StatusNotFound},
		{"zero origin", `{"polarity":"expense","originId":0,"afterId":1}`, true, http.StatusBadRequest},
		{"bad polarity", `{"polarity":"x","originId":3,"afterId":1}`, true, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCategoryHandlerFixture(false)
			if tt.setOrder {
				f.orders.SetOrder(domain.PersonalScope(1), domain.PolarityExpense, domain.Permutation{f.food.ID, f.travel.ID})
			}
			c, rec := newJSONContext(http.MethodPost, "/api/v1/categories/order", tt.body, 1)
			require.NoError(t, f.handler.ReorderCategories(c))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func multipartIconContext(t *testing.T, filename string, data []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/categories/3/icon", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|test", 1)
	return withID(c, "3"), rec
}

func testPNG(t *testing.T, size int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, size, size))))
	return buf.Bytes()
}

func TestUploadIcon(t *testing.T) {
	f := newCategoryHandlerFixture(true)

	c, rec := multipartIconContext(t, "travel.png", testPNG(t, 64))
	require.NoError(t, f.handler.UploadIcon(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response CategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, strings.HasPrefix(response.Icon, "icons/personal/1/"))
	assert.True(t, strings.HasPrefix(response.IconURL, "https://icons.test/icons/personal/1/"))
	assert.Len(t, f.icons.Objects, 1)
}

func TestUploadIcon_Rejects(t *testing.T) {
	t.Run("storage disabled", func(t *testing.T) {
		f := newCategoryHandlerFixture(false)
		c, rec := multipartIconContext(t, "travel.png", testPNG(t, 64))
		require.NoError(t, f.handler.UploadIcon(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("too small", func(t *testing.T) {
		f := newCategoryHandlerFixture(true)
		c, rec := multipartIconContext(t, "travel.png", testPNG(t, 8))
		require.NoError(t, f.handler.UploadIcon(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong extension", func(t *testing.T) {
		f := newCategoryHandlerFixture(true)
		c, rec := multipartIconContext(t, "travel.gif", testPNG(t, 64))
		require.NoError(t, f.handler.UploadIcon(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		f := newCategoryHandlerFixture(true)
		c, rec := newJSONContext(http.MethodPut, "/", "", 1)
		require.NoError(t, f.handler.UploadIcon(withID(c, "3")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

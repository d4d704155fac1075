package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/service"
	"github.com/dafibh/tally/tally-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chargeHandlerFixture struct {
	charges    *testutil.MockChargeRepository
	categories *testutil.MockChargeCategoryRepository
	handler    *ChargeHandler

	food, salary *domain.ChargeCategory
}

func newChargeHandlerFixture() *chargeHandlerFixture {
	f := &chargeHandlerFixture{
		charges:    testutil.NewMockChargeRepository(),
		categories: testutil.NewMockChargeCategoryRepository(),
	}
	teams := testutil.NewMockTeamRepository()
	teams.AddTeam(&domain.Team{ID: 5, Name: "Flat", Status: domain.StatusActive}, 1, 2)

	defaults := domain.PersonalScope(1).Defaults()
	f.food = f.categories.AddCategory(&domain.ChargeCategory{Scope: defaults, Name: "Food", Key: "food", Icon: "food", Polarity: domain.PolarityExpense})
	f.salary = f.categories.AddCategory(&domain.ChargeCategory{Scope: defaults, Name: "Salary", Key: "salary", Icon: "salary", Polarity: domain.PolarityIncome})

	f.handler = NewChargeHandler(
		service.NewScopeService(teams),
		service.NewChargeService(f.charges, f.categories),
		service.NewAggregationService(f.charges, service.AggregationConfig{}),
	)
	return f
}

func (f *chargeHandlerFixture) add(scope domain.Scope, createdBy int32, key string, polarity domain.Polarity, amount string, on time.Time) *domain.ChargeRecord {
	return f.charges.AddCharge(&domain.ChargeRecord{
		Scope:       scope,
		CreatedBy:   createdBy,
		CategoryKey: key,
		Polarity:    polarity,
		Amount:      decimal.RequireFromString(amount),
		OccurredOn:  on,
	})
}

func TestCreateCharge(t *testing.T) {
	f := newChargeHandlerFixture()

	c, rec := newJSONContext(http.MethodPost, "/api/v1/charges", `{"categoryKey":"salary","amount":"2500.5","date":"2024-03-01","note":"March"}`, 1)
	require.NoError(t, f.handler.CreateCharge(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var response ChargeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "income", response.Polarity)
	assert.Equal(t, "2500.50", response.Amount)
	assert.Equal(t, "2024-03-01", response.Date)
	assert.Equal(t, int32(1), response.CreatedBy)

	stored := f.charges.Charges[response.ID]
	require.NotNil(t, stored)
	assert.Equal(t, domain.PersonalScope(1), stored.Scope)
}

func TestCreateCharge_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid json", `{"amount":`, http.StatusBadRequest},
		{"amount not a number", `{"categoryKey":"food","amount":"ten"}`, http.StatusBadRequest},
		{"zero amount", `{"categoryKey":"food","amount":"0"}`, http.StatusBadRequest},
		{"bad date", `{"categoryKey":"food","amount":"1","date":"01/03/2024"}`, http.StatusBadRequest},
		{"unknown category", `{"categoryKey":"nope","amount":"1"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChargeHandlerFixture()
			c, rec := newJSONContext(http.MethodPost, "/api/v1/charges", tt.body, 1)
			require.NoError(t, f.handler.CreateCharge(c))
			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, f.charges.Charges)
		})
	}
}

func TestSummarizeCharges(t *testing.T) {
	f := newChargeHandlerFixture()
	personal := domain.PersonalScope(1)
	march := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	f.add(personal, 1, "food", domain.PolarityExpense, "10.005", march(1))
	f.add(personal, 1, "food", domain.PolarityExpense, "5", march(2))
	f.add(personal, 1, "salary", domain.PolarityIncome, "2000", march(2))
	f.add(personal, 1, "food", domain.PolarityExpense, "99", march(20))
	f.add(domain.PersonalScope(2), 2, "food", domain.PolarityExpense, "7", march(1))

	c, rec := newJSONContext(http.MethodGet, "/api/v1/charges?start=2024-03-01&end=2024-03-10&date=2024-03-20", "", 1)
	require.NoError(t, f.handler.SummarizeCharges(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Len(t, response.Result, 3, "range wins over date")
	require.Len(t, response.Items, 2)
	totals := map[string]string{}
	for _, item := range response.Items {
		totals[item.CategoryKey] = item.Money
	}
	assert.Equal(t, "15.01", totals["food"])
	assert.Equal(t, "2000.00", totals["salary"])
	assert.Equal(t, "15.01", response.Total["spend"])
	assert.Equal(t, "2000.00", response.Total["income"])
}

func TestSummarizeCharges_MineInTeam(t *testing.T) {
	f := newChargeHandlerFixture()
	team := domain.TeamScope(5)
	on := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.add(team, 1, "food", domain.PolarityExpense, "4", on)
	f.add(team, 2, "food", domain.PolarityExpense, "6", on)

	c, rec := newJSONContext(http.MethodGet, "/api/v1/charges?teamId=5&mine=true", "", 2)
	require.NoError(t, f.handler.SummarizeCharges(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Result, 1)
	assert.Equal(t, int32(2), response.Result[0].CreatedBy)
	assert.Equal(t, "6.00", response.Total["spend"])
}

func TestSummarizeCharges_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"half range", "?start=2024-03-01", http.StatusBadRequest},
		{"reversed range", "?start=2024-03-10&end=2024-03-01", http.StatusBadRequest},
		{"bad date", "?date=yesterday", http.StatusBadRequest},
		{"bad polarity", "?polarity=both", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChargeHandlerFixture()
			c, rec := newJSONContext(http.MethodGet, "/api/v1/charges"+tt.query, "", 1)
			require.NoError(t, f.handler.SummarizeCharges(c))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestGetRecentCharges(t *testing.T) {
	f := newChargeHandlerFixture()
	personal := domain.PersonalScope(1)
	f.add(personal, 1, "food", domain.PolarityExpense, "1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	f.add(personal, 1, "food", domain.PolarityExpense, "2", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	c, rec := newJSONContext(http.MethodGet, "/api/v1/charges/recent?start=2024-03-01&end=2024-03-31", "", 1)
	require.NoError(t, f.handler.GetRecentCharges(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response []ChargeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "1.00", response[0].Amount)

	c, rec = newJSONContext(http.MethodGet, "/api/v1/charges/recent?start=2024-03-01", "", 1)
	require.NoError(t, f.handler.GetRecentCharges(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCharge(t *testing.T) {
	f := newChargeHandlerFixture()
	charge := f.add(domain.PersonalScope(1), 1, "food", domain.PolarityExpense, "10", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	c, rec := newJSONContext(http.MethodPut, "/", `{"amount":"12.345","note":"lunch"}`, 1)
	require.NoError(t, f.handler.UpdateCharge(withID(c, "1")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decimal.RequireFromString("12.345").Equal(charge.Amount))
	assert.Equal(t, "lunch", charge.Note)

	c, rec = newJSONContext(http.MethodPut, "/", `{"amount":"-1"}`, 1)
	require.NoError(t, f.handler.UpdateCharge(withID(c, "1")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newJSONContext(http.MethodPut, "/", `{"amount":"1"}`, 2)
	require.NoError(t, f.handler.UpdateCharge(withID(c, "1")))
	assert.Equal(t, http.StatusNotFound, rec.Code, "another user's charge")
}

func TestGetAndDeleteCharge(t *testing.T) {
	f := newChargeHandlerFixture()
	charge := f.add(domain.PersonalScope(1), 1, "food", domain.PolarityExpense, "10", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	c, rec := newJSONContext(http.MethodGet, "/", "", 1)
	require.NoError(t, f.handler.GetCharge(withID(c, "1")))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(http.MethodDelete, "/", "", 1)
	require.NoError(t, f.handler.DeleteCharge(withID(c, "1")))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, domain.StatusDeleted, charge.Status)

	c, rec = newJSONContext(http.MethodGet, "/", "", 1)
	require.NoError(t, f.handler.GetCharge(withID(c, "1")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newJSONContext(http.MethodDelete, "/", "", 1)
	require.NoError(t, f.handler.DeleteCharge(withID(c, "1")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCharge_StoreError(t *testing.T) {
	f := newChargeHandlerFixture()
	f.charges.SoftDeleteFn = func(scope domain.Scope, id int32) error {
		return errors.New("db down")
	}

	c, rec := newJSONContext(http.MethodDelete, "/", "", 1)
	require.NoError(t, f.handler.DeleteCharge(withID(c, "1")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

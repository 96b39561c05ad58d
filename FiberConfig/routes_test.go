package FiberConfig

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishwajeetguru/smart-truck-manager/Cache"
	"github.com/vishwajeetguru/smart-truck-manager/Config"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"github.com/vishwajeetguru/smart-truck-manager/middleware"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type outbox struct {
	mu   sync.Mutex
	sent []Models.EmailMessage
}

func (o *outbox) Send(m Models.EmailMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return nil
}

func (o *outbox) last() Models.EmailMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent[len(o.sent)-1]
}

type testServer struct {
	app  *fiber.App
	db   *gorm.DB
	cfg  *Config.Config
	mail *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Models.Migrate(db))

	cfg := &Config.Config{
		Auth: Config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
			TrialDays: 7,
			OTPTTL:    10 * time.Minute,
		},
		Report: Config.ReportConfig{MaxRows: 1000},
	}
	mail := &outbox{}
	app := NewApp(cfg, db, Services{OTP: Cache.NewDBOTPStore(db), Mail: mail})
	return &testServer{app: app, db: db, cfg: cfg, mail: mail}
}

// owner creates a profile directly and returns it with a signed token.
func (s *testServer) owner(t *testing.T, emailAddr string) (Models.Profile, string) {
	t.Helper()
	profile := Models.Profile{Email: emailAddr, FullName: "Ravi Transport", Role: Models.RoleUser}
	require.NoError(t, s.db.Create(&profile).Error)
	token, _, err := middleware.NewAuthenticator(s.db, s.cfg.Auth).IssueToken(profile.ID)
	require.NoError(t, err)
	return profile, token
}

func (s *testServer) raw(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *testServer) call(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	resp := s.raw(t, method, path, token, body)
	defer resp.Body.Close()
	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func data(body map[string]interface{}) map[string]interface{} {
	d, _ := body["data"].(map[string]interface{})
	return d
}

func (s *testServer) createTruck(t *testing.T, token, number string) string {
	t.Helper()
	status, body := s.call(t, http.MethodPost, "/api/trucks", token, map[string]interface{}{
		"truck_number": number,
		"model":        "Tata Signa",
	})
	require.Equal(t, http.StatusCreated, status, body)
	return data(body)["id"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.raw(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.call(t, http.MethodGet, "/api/trips", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.call(t, http.MethodGet, "/api/trips", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBlockedProfileIsForbidden(t *testing.T) {
	s := newTestServer(t)
	profile, token := s.owner(t, "blocked@example.com")
	require.NoError(t, s.db.Model(&profile).Update("is_blocked", true).Error)

	status, _ := s.call(t, http.MethodGet, "/api/trucks", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCreateReceivedTripRecordsPayment(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	truckID := s.createTruck(t, token, "MH12AB1234")

	status, body := s.call(t, http.MethodPost, "/api/trips", token, map[string]interface{}{
		"truck_id":       truckID,
		"trip_date":      "2024-03-10",
		"client":         "Acme Builders",
		"supplier":       "Stone Co",
		"material":       "Sand",
		"material_price": 500,
		"trips_count":    "4",
		"profit":         300,
		"payment_status": "received",
	})
	require.Equal(t, http.StatusCreated, status, body)

	trip := data(body)
	assert.Equal(t, "received", trip["status"])
	assert.InDelta(t, 2000, trip["order_value"], 0.001)
	assert.InDelta(t, 2000, trip["paid_amount"], 0.001)
	assert.InDelta(t, 0, trip["balance"], 0.001)
	assert.InDelta(t, 1700, trip["total_expense"], 0.001)
	assert.Equal(t, Models.SourceFreeform, trip["supplier_source"])

	status, body = s.call(t, http.MethodGet, "/api/payments/history?range=yearly", token, nil)
	require.Equal(t, http.StatusOK, status)
	history := body["data"].([]interface{})
	require.Len(t, history, 1)
	payment := history[0].(map[string]interface{})
	assert.Equal(t, "cash", payment["mode"])
	assert.InDelta(t, 2000, payment["amount"], 0.001)
}

func TestPendingTripBecomesReceivedWhenPaid(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	truckID := s.createTruck(t, token, "MH12AB1234")

	status, body := s.call(t, http.MethodPost, "/api/trips", token, map[string]interface{}{
		"truck_id":          truckID,
		"total_order_value": 1000,
		"client":            "Acme Builders",
	})
	require.Equal(t, http.StatusCreated, status, body)
	tripID := data(body)["id"].(string)
	assert.Equal(t, "pending", data(body)["status"])

	status, body = s.call(t, http.MethodPost, "/api/payments", token, map[string]interface{}{
		"trip_id": tripID,
		"amount":  400,
		"mode":    "upi",
	})
	require.Equal(t, http.StatusCreated, status, body)
	settlement := data(body)["settlement"].(map[string]interface{})
	assert.Equal(t, "pending", settlement["status"])
	assert.InDelta(t, 600, settlement["balance"], 0.001)

	status, _ = s.call(t, http.MethodPost, "/api/payments", token, map[string]interface{}{
		"trip_id": tripID,
		"amount":  600,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = s.call(t, http.MethodGet, "/api/trips/"+tripID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "received", data(body)["status"])

	status, body = s.call(t, http.MethodGet, "/api/trips?status=received", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestPaymentMustBePositive(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	truckID := s.createTruck(t, token, "MH12AB1234")
	_, body := s.call(t, http.MethodPost, "/api/trips", token, map[string]interface{}{
		"truck_id":          truckID,
		"total_order_value": 1000,
	})
	tripID := data(body)["id"].(string)

	status, body := s.call(t, http.MethodPost, "/api/payments", token, map[string]interface{}{
		"trip_id": tripID,
		"amount":  -5,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["fields"], "amount")
}

func TestOtherOwnersTripIsNotFound(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	_, otherToken := s.owner(t, "other@example.com")
	truckID := s.createTruck(t, otherToken, "KA01XY9999")

	status, body := s.call(t, http.MethodPost, "/api/trips", otherToken, map[string]interface{}{
		"truck_id":          truckID,
		"total_order_value": 1000,
	})
	require.Equal(t, http.StatusCreated, status)
	tripID := data(body)["id"].(string)

	status, _ = s.call(t, http.MethodGet, "/api/trips/"+tripID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.call(t, http.MethodDelete, "/api/trips/"+tripID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.call(t, http.MethodPost, "/api/trips", token, map[string]interface{}{
		"truck_id":          truckID,
		"total_order_value": 1000,
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.call(t, http.MethodGet, "/api/trips", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])
}

func TestProfitAboveOrderValueIsRejected(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	truckID := s.createTruck(t, token, "MH12AB1234")

	status, _ := s.call(t, http.MethodPost, "/api/trips", token, map[string]interface{}{
		"truck_id":          truckID,
		"total_order_value": 1000,
		"profit":            1500,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	var count int64
	require.NoError(t, s.db.Model(&Models.Trip{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNegativeInputsAreClamped(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	truckID := s.createTruck(t, token, "MH12AB1234")

	status, body := s.call(t, http.MethodPost, "/api/trips", token, map[string]interface{}{
		"truck_id":       truckID,
		"material_price": "-50",
		"trips_count":    2,
		"profit":         "abc",
	})
	require.Equal(t, http.StatusCreated, status, body)
	trip := data(body)
	assert.InDelta(t, 0, trip["material_price"], 0.001)
	assert.InDelta(t, 0, trip["order_value"], 0.001)
	assert.InDelta(t, 0, trip["profit"], 0.001)
	assert.Equal(t, "received", trip["status"])
}

func TestUpdateTripRecomputesOrderValue(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	truckID := s.createTruck(t, token, "MH12AB1234")

	_, body := s.call(t, http.MethodPost, "/api/trips", token, map[string]interface{}{
		"truck_id":       truckID,
		"material_price": 100,
		"trips_count":    2,
		"profit":         50,
	})
	tripID := data(body)["id"].(string)

	status, body := s.call(t, http.MethodPatch, "/api/trips/"+tripID, token, map[string]interface{}{
		"trips_count": 5,
		"client":      "New Client",
	})
	require.Equal(t, http.StatusOK, status, body)
	trip := data(body)
	assert.InDelta(t, 500, trip["total_order_value"], 0.001)
	assert.InDelta(t, 450, trip["total_expense"], 0.001)
	assert.Equal(t, "New Client", trip["client"])
}

func TestCalculate(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")

	status, body := s.call(t, http.MethodPost, "/api/trips/calculate", token, map[string]interface{}{
		"draft": map[string]interface{}{"material_price": 250, "trips_count": 0, "profit": 100},
		"field": "trips_count",
		"value": "3",
	})
	require.Equal(t, http.StatusOK, status, body)
	draft := data(body)
	assert.InDelta(t, 750, draft["total_order_value"], 0.001)
	assert.InDelta(t, 650, draft["total_expense"], 0.001)

	status, body = s.call(t, http.MethodPost, "/api/trips/calculate", token, map[string]interface{}{
		"draft": map[string]interface{}{"material_price": "100", "trips_count": "3", "profit": "abc"},
		"field": "material_price",
		"value": "100",
	})
	require.Equal(t, http.StatusOK, status, body)
	draft = data(body)
	assert.InDelta(t, 300, draft["total_order_value"], 0.001)
	assert.InDelta(t, 0, draft["profit"], 0.001)
	assert.InDelta(t, 300, draft["total_expense"], 0.001)

	status, body = s.call(t, http.MethodPost, "/api/trips/calculate", token, map[string]interface{}{
		"draft": map[string]interface{}{"profit": -50},
		"field": "total_order_value",
		"value": "300",
	})
	require.Equal(t, http.StatusOK, status, body)
	draft = data(body)
	assert.InDelta(t, 0, draft["profit"], 0.001)
	assert.InDelta(t, 300, draft["total_expense"], 0.001)

	status, _ = s.call(t, http.MethodPost, "/api/trips/calculate", token, map[string]interface{}{
		"field": "volume",
		"value": "3",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeleteTruckInUseIsRejected(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	busy := s.createTruck(t, token, "MH12AB1234")
	idle := s.createTruck(t, token, "MH12AB5678")

	status, _ := s.call(t, http.MethodPost, "/api/trips", token, map[string]interface{}{
		"truck_id":          busy,
		"total_order_value": 1000,
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = s.call(t, http.MethodDelete, "/api/trucks/"+busy, token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body := s.call(t, http.MethodPost, "/api/drivers", token, map[string]interface{}{
		"name":     "Suresh",
		"mobiles":  []string{"9876543210"},
		"truck_id": idle,
	})
	require.Equal(t, http.StatusCreated, status, body)
	driverID := data(body)["id"].(string)

	status, _ = s.call(t, http.MethodDelete, "/api/trucks/"+idle, token, nil)
	assert.Equal(t, http.StatusOK, status)

	var driver Models.Driver
	require.NoError(t, s.db.First(&driver, "id = ?", driverID).Error)
	assert.Nil(t, driver.TruckID)
}

func TestDeleteTruckWithRemovedFuelLogIsRejected(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	truckID := s.createTruck(t, token, "MH12AB1234")

	status, body := s.call(t, http.MethodPost, "/api/fuel-expenses", token, map[string]interface{}{
		"truck_id":  truckID,
		"amount":    300,
		"filled_by": "Suresh",
	})
	require.Equal(t, http.StatusCreated, status, body)
	require.NoError(t, s.db.Where("truck_id = ?", truckID).Delete(&Models.FuelExpense{}).Error)

	status, body = s.call(t, http.MethodGet, "/api/fuel-expenses", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Empty(t, list(body))

	status, body = s.call(t, http.MethodDelete, "/api/trucks/"+truckID, token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.EqualValues(t, 1, data(body)["fuel_expenses"])

	var count int64
	require.NoError(t, s.db.Model(&Models.Truck{}).Where("id = ?", truckID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDriverAdvancePaymentRaisesBalance(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")

	status, body := s.call(t, http.MethodPost, "/api/drivers", token, map[string]interface{}{
		"name":    "Suresh",
		"mobiles": []string{"9876543210", "9123456780"},
		"salary":  15000,
		"advance": 1000,
	})
	require.Equal(t, http.StatusCreated, status, body)
	driver := data(body)
	assert.Equal(t, "9876543210", driver["mobile_primary"])
	assert.Equal(t, "9123456780", driver["mobile_secondary"])
	driverID := driver["id"].(string)

	status, _ = s.call(t, http.MethodPost, "/api/drivers/"+driverID+"/payments", token, map[string]interface{}{
		"amount":       500,
		"payment_type": "advance",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.call(t, http.MethodPost, "/api/drivers/"+driverID+"/payments", token, map[string]interface{}{
		"amount":       15000,
		"payment_type": "salary",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = s.call(t, http.MethodGet, "/api/drivers/"+driverID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 1500, data(body)["advance"], 0.001)

	status, body = s.call(t, http.MethodGet, "/api/drivers/"+driverID+"/payments", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)
}

func TestDriverRequiresMobile(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")

	status, body := s.call(t, http.MethodPost, "/api/drivers", token, map[string]interface{}{
		"name":    "Suresh",
		"mobiles": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["fields"], "mobiles")
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	truckID := s.createTruck(t, token, "MH12AB1234")

	for _, trip := range []map[string]interface{}{
		{"truck_id": truckID, "total_order_value": 1000, "payment_status": "received"},
		{"truck_id": truckID, "total_order_value": 500},
	} {
		status, body := s.call(t, http.MethodPost, "/api/trips", token, trip)
		require.Equal(t, http.StatusCreated, status, body)
	}
	status, body := s.call(t, http.MethodPost, "/api/fuel-expenses", token, map[string]interface{}{
		"truck_id":  truckID,
		"amount":    300,
		"liters":    3,
		"filled_by": "Suresh",
	})
	require.Equal(t, http.StatusCreated, status, body)
	status, body = s.call(t, http.MethodPost, "/api/expenses", token, map[string]interface{}{
		"truck_id": truckID,
		"amount":   200,
		"category": "Tyre",
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = s.call(t, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	dash := data(body)

	stats := dash["stats"].(map[string]interface{})
	assert.EqualValues(t, 2, stats["total_trips"])
	assert.InDelta(t, 1000, stats["total_earnings"], 0.001)
	assert.InDelta(t, 500, stats["pending"], 0.001)
	assert.InDelta(t, 300, stats["fuel_cost"], 0.001)

	weekly := dash["weekly_earnings"].([]interface{})
	require.Len(t, weekly, 7)
	assert.InDelta(t, 1500, weekly[6].(map[string]interface{})["amount"], 0.001)

	assert.Len(t, dash["expense_breakdown"], 4)
	assert.Len(t, dash["recent_trips"], 2)
	assert.EqualValues(t, 0, dash["trial_days_left"])
}

func TestReportExcelDownload(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	truckID := s.createTruck(t, token, "MH12AB1234")
	status, _ := s.call(t, http.MethodPost, "/api/trips", token, map[string]interface{}{
		"truck_id":          truckID,
		"total_order_value": 1000,
		"client":            "Acme Builders",
	})
	require.Equal(t, http.StatusCreated, status)

	resp := s.raw(t, http.MethodGet, "/api/reports?format=excel&range=yearly", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "TruckManager_Report_yearly_")
	assert.True(t, strings.HasSuffix(strings.Trim(resp.Header.Get("Content-Disposition"), `"`), ".xlsx"))

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Trips")
	rows, err := f.GetRows("Trips")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MH12AB1234", rows[1][1])
}

func TestReportPDFAndLimits(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")

	resp := s.raw(t, http.MethodGet, "/api/reports?format=pdf", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "TruckManager_Report_weekly_")

	status, _ := s.call(t, http.MethodGet, "/api/reports?format=csv", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	s.cfg.Report.MaxRows = 1
	s.app = NewApp(s.cfg, s.db, Services{OTP: Cache.NewDBOTPStore(s.db), Mail: s.mail})
	for _, name := range []string{"Stone Co", "Rock Ltd"} {
		status, _ := s.call(t, http.MethodPost, "/api/suppliers", token, map[string]interface{}{
			"name":   name,
			"mobile": "9000000000",
		})
		require.Equal(t, http.StatusCreated, status)
	}
	status, _ = s.call(t, http.MethodGet, "/api/reports?format=excel", token, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
}

func list(body map[string]interface{}) []interface{} {
	rows, _ := body["data"].([]interface{})
	return rows
}

func TestTruckAndClientFilters(t *testing.T) {
	s := newTestServer(t)
	_, token := s.owner(t, "owner@example.com")
	trucks := map[string]string{
		"Acme": s.createTruck(t, token, "MH12AB1234"),
		"Beta": s.createTruck(t, token, "MH12AB5678"),
	}
	trips := map[string]string{}
	for client, truckID := range trucks {
		status, body := s.call(t, http.MethodPost, "/api/trips", token, map[string]interface{}{
			"truck_id":          truckID,
			"client":            client,
			"total_order_value": 1000,
		})
		require.Equal(t, http.StatusCreated, status, body)
		trips[client] = data(body)["id"].(string)

		status, body = s.call(t, http.MethodPost, "/api/payments", token, map[string]interface{}{
			"trip_id": trips[client],
			"amount":  400,
		})
		require.Equal(t, http.StatusCreated, status, body)
		status, body = s.call(t, http.MethodPost, "/api/fuel-expenses", token, map[string]interface{}{
			"truck_id":  truckID,
			"amount":    300,
			"filled_by": "Suresh",
		})
		require.Equal(t, http.StatusCreated, status, body)
		status, body = s.call(t, http.MethodPost, "/api/expenses", token, map[string]interface{}{
			"truck_id": truckID,
			"amount":   200,
		})
		require.Equal(t, http.StatusCreated, status, body)
	}
	acme := trucks["Acme"]

	status, body := s.call(t, http.MethodGet, "/api/payments/history?truck="+acme, token, nil)
	require.Equal(t, http.StatusOK, status, body)
	require.Len(t, list(body), 1)
	assert.Equal(t, trips["Acme"], list(body)[0].(map[string]interface{})["trip_id"])

	status, body = s.call(t, http.MethodGet, "/api/fuel-expenses?truck="+acme, token, nil)
	require.Equal(t, http.StatusOK, status, body)
	require.Len(t, list(body), 1)
	assert.Equal(t, acme, list(body)[0].(map[string]interface{})["truck_id"])

	status, body = s.call(t, http.MethodGet, "/api/expenses?truck_id="+acme, token, nil)
	require.Equal(t, http.StatusOK, status, body)
	require.Len(t, list(body), 1)
	assert.Equal(t, acme, list(body)[0].(map[string]interface{})["truck_id"])

	status, body = s.call(t, http.MethodGet, "/api/trips?client=beta", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	require.Len(t, list(body), 1)
	assert.Equal(t, trips["Beta"], list(body)[0].(map[string]interface{})["id"])

	status, body = s.call(t, http.MethodGet, "/api/payments/history?client=Beta", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	require.Len(t, list(body), 1)
	assert.Equal(t, trips["Beta"], list(body)[0].(map[string]interface{})["trip_id"])

	status, body = s.call(t, http.MethodGet, "/api/dashboard?truck="+acme, token, nil)
	require.Equal(t, http.StatusOK, status, body)
	stats := data(body)["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_trips"])
	assert.InDelta(t, 600, stats["pending"], 0.001)
	assert.InDelta(t, 300, stats["fuel_cost"], 0.001)

	resp := s.raw(t, http.MethodGet, "/api/reports?format=excel&range=yearly&truck="+acme, token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	for _, sheet := range []string{"Trips", "Payments", "Fuel Expenses", "General Expenses"} {
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		require.Len(t, rows, 2, sheet)
		assert.Equal(t, "MH12AB1234", rows[1][1], sheet)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	input := map[string]interface{}{
		"email":     "New@Example.com",
		"password":  "secret123",
		"full_name": "Ravi",
	}

	status, body := s.call(t, http.MethodPost, "/api/auth/register", "", input)
	require.Equal(t, http.StatusCreated, status, body)
	assert.NotContains(t, data(body), "token")
	assert.EqualValues(t, 7, data(body)["trial_days_left"])
	assert.Equal(t, []string{"new@example.com"}, s.mail.last().To)
	code := regexp.MustCompile(`\d{6}`).FindString(s.mail.last().Body)
	require.NotEmpty(t, code)

	status, _ = s.call(t, http.MethodPost, "/api/auth/register", "", input)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.call(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "new@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = s.call(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "new@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Please verify your email first", body["message"])

	status, _ = s.call(t, http.MethodPost, "/api/auth/verify-otp", "", map[string]interface{}{
		"email": "new@example.com", "code": code,
	})
	require.Equal(t, http.StatusOK, status)

	status, body = s.call(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email": "new@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)
	token := data(body)["token"].(string)

	status, body = s.call(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	profile := data(body)["profile"].(map[string]interface{})
	assert.Equal(t, "new@example.com", profile["email"])
	assert.Equal(t, true, profile["is_verified"])
	assert.NotContains(t, profile, "password_hash")
}

func TestOTPLogin(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.call(t, http.MethodPost, "/api/auth/send-otp", "", map[string]interface{}{
		"email": "otp@example.com",
	})
	require.Equal(t, http.StatusOK, status)
	code := regexp.MustCompile(`\d{6}`).FindString(s.mail.last().Body)
	require.NotEmpty(t, code)

	status, _ = s.call(t, http.MethodPost, "/api/auth/verify-otp", "", map[string]interface{}{
		"email": "otp@example.com", "code": "000000",
	})
	if code != "000000" {
		assert.Equal(t, http.StatusUnauthorized, status)
	}

	status, body := s.call(t, http.MethodPost, "/api/auth/verify-otp", "", map[string]interface{}{
		"email": "otp@example.com", "code": code,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.NotEmpty(t, data(body)["token"])

	var profile Models.Profile
	require.NoError(t, s.db.First(&profile, "email = ?", "otp@example.com").Error)
	assert.True(t, profile.IsVerified)
}

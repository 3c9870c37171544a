package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"testing"

	"lectoria/backend/config"
	"lectoria/backend/models"
	"lectoria/backend/services"
	"lectoria/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	testUser models.User
	jwtToken string
)

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func setup() {
	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	var err error
	db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := utils.MigrateDB(db); err != nil {
		panic(err)
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	testUser = models.User{
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: string(hash),
		CurrentLevel: 1,
		Active:       true,
	}
	db.Create(&testUser)

	jwtToken, err = utils.GenerateJWTToken(testUser.ID, cfg)
	if err != nil {
		panic(err)
	}

	logger := log.New(io.Discard, "", 0)
	progression := services.NewProgressionService(db, logger)
	pc := NewProgressionController(db, cfg, progression)

	ac := NewAuthController(db, cfg)

	app = fiber.New()
	app.Post("/api/auth/register", ac.Register)
	app.Post("/api/auth/login", ac.Login)
	app.Post("/api/progression/tests/complete", pc.CompleteTest)
	app.Get("/api/progression/tests/available", pc.GetAvailableTests)
	app.Get("/api/progression/overview", pc.GetOverview)
}

func doRequest(t *testing.T, method, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, target, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func TestCompleteTestUnlocksNextTest(t *testing.T) {
	testA := models.ReadingTest{Title: "Lectura A", Level: 1}
	testB := models.ReadingTest{Title: "Lectura B", Level: 2}
	require.NoError(t, db.Create(&testA).Error)
	require.NoError(t, db.Create(&testB).Error)
	require.NoError(t, db.Create(&models.TestPrerequisite{
		TestID:           testB.ID,
		PrerequisiteID:   testA.ID,
		MinLevelRequired: 1,
		Active:           true,
	}).Error)

	status, result := doRequest(t, "POST", "/api/progression/tests/complete", map[string]interface{}{
		"test_id":   testA.ID,
		"score":     85,
		"max_score": 100,
	})
	require.Equal(t, fiber.StatusOK, status)

	data := result["data"].(map[string]interface{})
	res := data["result"].(map[string]interface{})
	assert.InDelta(t, 85, res["Percentage"].(float64), 0.01)

	progression := data["progression"].(map[string]interface{})
	unlocked := progression["newly_unlocked_tests"].([]interface{})
	require.Len(t, unlocked, 1)
	assert.Equal(t, "Lectura B", unlocked[0].(map[string]interface{})["title"])
}

func TestRepeatCompletionReturnsEmptyOutcome(t *testing.T) {
	testC := models.ReadingTest{Title: "Lectura C", Level: 1}
	testD := models.ReadingTest{Title: "Lectura D", Level: 2}
	require.NoError(t, db.Create(&testC).Error)
	require.NoError(t, db.Create(&testD).Error)
	require.NoError(t, db.Create(&models.TestPrerequisite{
		TestID:           testD.ID,
		PrerequisiteID:   testC.ID,
		MinLevelRequired: 1,
		Active:           true,
	}).Error)

	body := map[string]interface{}{
		"test_id":   testC.ID,
		"score":     90,
		"max_score": 100,
	}

	status, first := doRequest(t, "POST", "/api/progression/tests/complete", body)
	require.Equal(t, fiber.StatusOK, status)
	firstData := first["data"].(map[string]interface{})
	firstUnlocked := firstData["progression"].(map[string]interface{})["newly_unlocked_tests"].([]interface{})
	require.Len(t, firstUnlocked, 1)

	status, second := doRequest(t, "POST", "/api/progression/tests/complete", body)
	require.Equal(t, fiber.StatusOK, status)

	data := second["data"].(map[string]interface{})
	res := data["result"].(map[string]interface{})
	assert.EqualValues(t, 2, res["Attempts"].(float64))

	unlocked := data["progression"].(map[string]interface{})["newly_unlocked_tests"].([]interface{})
	assert.Empty(t, unlocked)
}

func TestCompleteLockedTestIsForbidden(t *testing.T) {
	gateE := models.ReadingTest{Title: "Lectura E", Level: 1}
	testF := models.ReadingTest{Title: "Lectura F", Level: 2}
	require.NoError(t, db.Create(&gateE).Error)
	require.NoError(t, db.Create(&testF).Error)
	require.NoError(t, db.Create(&models.TestPrerequisite{
		TestID:           testF.ID,
		PrerequisiteID:   gateE.ID,
		MinLevelRequired: 1,
		Active:           true,
	}).Error)

	status, _ := doRequest(t, "POST", "/api/progression/tests/complete", map[string]interface{}{
		"test_id":   testF.ID,
		"score":     100,
		"max_score": 100,
	})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestCompleteTestRejectsInvalidScores(t *testing.T) {
	status, _ := doRequest(t, "POST", "/api/progression/tests/complete", map[string]interface{}{
		"test_id":   1,
		"score":     -5,
		"max_score": 100,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doRequest(t, "POST", "/api/progression/tests/complete", map[string]interface{}{
		"test_id":   1,
		"score":     10,
		"max_score": 0,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCompleteUnknownTestIsNotFound(t *testing.T) {
	status, _ := doRequest(t, "POST", "/api/progression/tests/complete", map[string]interface{}{
		"test_id":   999999,
		"score":     10,
		"max_score": 100,
	})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestGetAvailableTests(t *testing.T) {
	status, result := doRequest(t, "GET", "/api/progression/tests/available", nil)
	require.Equal(t, fiber.StatusOK, status)

	data := result["data"].(map[string]interface{})
	tests := data["tests"].([]interface{})
	assert.NotEmpty(t, tests)
}

func TestGetOverview(t *testing.T) {
	status, result := doRequest(t, "GET", "/api/progression/overview", nil)
	require.Equal(t, fiber.StatusOK, status)

	data := result["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "Ana", user["name"])
	assert.GreaterOrEqual(t, user["current_level"].(float64), float64(1))
}

package testutils

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB returns a postgres-dialect gorm handle backed by sqlmock.
func SetupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %s", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger: logger.New(log.New(io.Discard, "", log.LstdFlags), logger.Config{LogLevel: logger.Silent}),
	})
	if err != nil {
		t.Fatalf("gorm open: %s", err)
	}

	return gormDB, mock, func() { sqlDB.Close() }
}

func InitTestMain() {
	gin.SetMode(gin.TestMode)
}

func SetupTestRouter() *gin.Engine {
	InitTestMain()
	return gin.New()
}

// BearerToken signs a one hour token for userID.
func BearerToken(t *testing.T, secret, userID string) string {
	token, err := utils.GenerateJWT(secret, userID, 1)
	if err != nil {
		t.Fatalf("sign token: %s", err)
	}
	return "Bearer " + token
}

// PerformRequest runs one request through h. Headers with an empty value are skipped.
func PerformRequest(h http.Handler, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// DecodeResponse parses the standard response envelope.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) utils.Response {
	var response utils.Response
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response %q: %s", w.Body.String(), err)
	}
	return response
}

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

const (
	idempCacheKey = "idemp:/salary/generate-payroll:user-1:key-1"
	idempLockKey  = idempCacheKey + ":lock"
)

func newIdempotentRouter(rdb *redis.Client, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/salary/generate-payroll", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "user-1")
		c.Next()
	}, middleware.Idempotency(rdb), func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusAccepted, gin.H{"request_id": "r-1"})
	})
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/salary/generate-payroll", nil)
	if key != "" {
		req.Header.Set(middleware.HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_FirstRequestIsStored(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	calls := 0
	router := newIdempotentRouter(rdb, &calls)

	mock.ExpectGet(idempCacheKey).RedisNil()
	mock.ExpectSetNX(idempLockKey, "locked", 30*time.Second).SetVal(true)
	mock.ExpectSet(idempCacheKey, []byte(`{"status":202,"body":{"request_id":"r-1"}}`), 24*time.Hour).SetVal("OK")
	mock.ExpectDel(idempLockKey).SetVal(1)

	w := postWithKey(router, "key-1")

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	calls := 0
	router := newIdempotentRouter(rdb, &calls)

	mock.ExpectGet(idempCacheKey).SetVal(`{"status":202,"body":{"request_id":"r-1"}}`)

	w := postWithKey(router, "key-1")

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "true", w.Header().Get(middleware.HeaderReplayed))
	assert.JSONEq(t, `{"request_id":"r-1"}`, w.Body.String())
	assert.Equal(t, 0, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ConcurrentDuplicate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	calls := 0
	router := newIdempotentRouter(rdb, &calls)

	mock.ExpectGet(idempCacheKey).RedisNil()
	mock.ExpectSetNX(idempLockKey, "locked", 30*time.Second).SetVal(false)

	w := postWithKey(router, "key-1")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PROCESSING")
	assert.Equal(t, 0, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_WithoutKeyOrOnRedisFailure(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	calls := 0
	router := newIdempotentRouter(rdb, &calls)

	w := postWithKey(router, "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	mock.ExpectGet(idempCacheKey).SetErr(assert.AnError)
	w = postWithKey(router, "key-1")
	assert.Equal(t, http.StatusAccepted, w.Code)

	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

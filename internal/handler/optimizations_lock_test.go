package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// newLockTestHandler 使用内存中的 redis，优化参数取配置中的默认值
func newLockTestHandler(t *testing.T) (*Handler, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	h := newTestHandler(t)
	require.NoError(t, env.ParseWithOptions(&h.config.Optimizer, env.Options{Prefix: "OPTIMIZER_"}))
	h.config.Redis.OperationExpiration = 5
	h.config.Redis.LockExpiration = 300
	h.redisClient = client

	return h, mr
}

func postOptimization(t *testing.T, h *Handler, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/optimizations", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.CreateOptimization(rec, r)
	return rec, decodeResponse(t, rec)
}

func TestOptimizationLock(t *testing.T) {
	h, mr := newLockTestHandler(t)

	acquired, err := h.acquireOptimizationLock()
	require.NoError(t, err)
	require.True(t, acquired)
	require.True(t, mr.Exists(optimizationLockKey))
	require.Equal(t, 300*time.Second, mr.TTL(optimizationLockKey))

	acquired, err = h.acquireOptimizationLock()
	require.NoError(t, err)
	require.False(t, acquired)

	h.releaseOptimizationLock()
	require.False(t, mr.Exists(optimizationLockKey))

	acquired, err = h.acquireOptimizationLock()
	require.NoError(t, err)
	require.True(t, acquired)
}

func TestOptimizationLockExpires(t *testing.T) {
	h, mr := newLockTestHandler(t)

	acquired, err := h.acquireOptimizationLock()
	require.NoError(t, err)
	require.True(t, acquired)

	mr.FastForward(301 * time.Second)

	acquired, err = h.acquireOptimizationLock()
	require.NoError(t, err)
	require.True(t, acquired)
}

func TestCreateOptimizationLockHeld(t *testing.T) {
	h, mr := newLockTestHandler(t)
	require.NoError(t, mr.Set(optimizationLockKey, "1"))

	rec, resp := postOptimization(t, h, `{"runDate":"2026-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, resp.Success)
	require.Equal(t, "已有优化任务正在运行，请稍后重试", resp.Message)

	// 没有拿到锁的请求不能释放别人的锁
	got, err := mr.Get(optimizationLockKey)
	require.NoError(t, err)
	require.Equal(t, "1", got)
}

func TestCreateOptimizationRejectsBeforeLock(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"种群过小", `{"runDate":"2026-03-01","parameters":{"populationSize":1}}`},
		{"精英数量不小于种群", `{"runDate":"2026-03-01","parameters":{"populationSize":4,"eliteCount":4}}`},
		{"日期格式错误", `{"runDate":"2026/03/01"}`},
		{"未知算法", `{"runDate":"2026-03-01","strategies":["tabu"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mr := newLockTestHandler(t)

			_, resp := postOptimization(t, h, tt.body)
			require.False(t, resp.Success)
			require.NotEqual(t, "已有优化任务正在运行，请稍后重试", resp.Message)
			require.False(t, mr.Exists(optimizationLockKey))
		})
	}
}

func TestCreateOptimizationRedisUnavailable(t *testing.T) {
	h, mr := newLockTestHandler(t)
	mr.Close()

	rec, resp := postOptimization(t, h, `{"runDate":"2026-03-01"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "服务器内部错误", resp.Message)
}

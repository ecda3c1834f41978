package db

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

var testDBCounter atomic.Int64

// 每个测试使用独立的共享缓存内存库，互不串扰
func newTestDB(t *testing.T) *Database {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	d, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func ptr[T any](v T) *T {
	return &v
}

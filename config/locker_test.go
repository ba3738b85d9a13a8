package config

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestLockNotObtainedIsRetryableConflict(t *testing.T) {
	assert.True(t, errors.Is(ErrLockNotObtained, models.ErrConflict))
	assert.Equal(t, http.StatusConflict, models.HTTPStatus(models.KindOf(ErrLockNotObtained)))
	assert.Equal(t, "resource is busy, try again", models.PublicMessage(ErrLockNotObtained))
}

func TestRedisLockerContention(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run Redis integration tests")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.2-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate redis container: %v", err)
		}
	})
	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	locker := NewRedisLocker(redislock.New(rdb), 10*time.Second)
	locker.wait = 200 * time.Millisecond

	unlock, err := locker.Lock(ctx, "cart:1:user:7")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "cart:1:user:7")
	assert.True(t, errors.Is(err, models.ErrConflict), "got %v", err)

	unlock()
	again, err := locker.Lock(ctx, "cart:1:user:7")
	require.NoError(t, err)
	again()
}

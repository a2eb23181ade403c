package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient() (*Client, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return &Client{Client: db}, mock
}

func TestSetWithExpiration(t *testing.T) {
	client, mock := newMockClient()
	mock.ExpectSet("dist_Toronto_Hamilton", "68500", 6*time.Hour).SetVal("OK")

	err := client.SetWithExpiration(context.Background(), "dist_Toronto_Hamilton", "68500", 6*time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetString(t *testing.T) {
	client, mock := newMockClient()
	mock.ExpectGet("dist_Toronto_Hamilton").SetVal("68500")

	val, err := client.GetString(context.Background(), "dist_Toronto_Hamilton")
	require.NoError(t, err)
	assert.Equal(t, "68500", val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetString_Miss(t *testing.T) {
	client, mock := newMockClient()
	mock.ExpectGet("dist_missing").RedisNil()

	_, err := client.GetString(context.Background(), "dist_missing")
	require.Error(t, err)
	assert.True(t, IsMiss(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsMiss_OtherErrors(t *testing.T) {
	assert.False(t, IsMiss(errors.New("connection refused")))
	assert.False(t, IsMiss(nil))
}

func TestPing(t *testing.T) {
	client, mock := newMockClient()
	mock.ExpectPing().SetVal("PONG")

	require.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

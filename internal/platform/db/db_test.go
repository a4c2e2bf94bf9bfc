package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"hrperf/internal/platform/config"
)

func TestConnectRejectsMalformedURL(t *testing.T) {
	pool, err := Connect(context.Background(), config.Config{DatabaseURL: "postgres://%zz"})
	assert.Error(t, err)
	assert.Nil(t, pool)
}

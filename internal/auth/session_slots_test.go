package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionSlots_WithoutRedisReadsEmpty(t *testing.T) {
	ctx := context.Background()
	slot := NewSessionSlots(nil, time.Hour).Slot("sid")

	assert.NoError(t, slot.Write(ctx, []byte("{}")))
	data, err := slot.Read(ctx)
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, slot.Clear(ctx))
}

package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":     1,
		"amount": "100.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeCharge, payload)
	after := time.Now()

	assert.Equal(t, "charge.created", evt.Type)
	assert.Equal(t, EntityTypeCharge, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	evt := NewEvent(EventTypeReordered, EntityTypeCategory, map[string]interface{}{"ids": []int32{2, 1}})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "category.reordered", decoded["type"])
	assert.Equal(t, "category", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": float64(1)}

	tests := []struct {
		name   string
		build  func(interface{}) Event
		want   string
		entity EntityType
	}{
		{"CategoryCreated", CategoryCreated, "category.created", EntityTypeCategory},
		{"CategoryUpdated", CategoryUpdated, "category.updated", EntityTypeCategory},
		{"CategoryDeleted", CategoryDeleted, "category.deleted", EntityTypeCategory},
		{"CategoryReordered", CategoryReordered, "category.reordered", EntityTypeCategory},
		{"ChargeCreated", ChargeCreated, "charge.created", EntityTypeCharge},
		{"ChargeUpdated", ChargeUpdated, "charge.updated", EntityTypeCharge},
		{"ChargeDeleted", ChargeDeleted, "charge.deleted", EntityTypeCharge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := tt.build(payload)
			assert.Equal(t, tt.want, evt.Type)
			assert.Equal(t, tt.entity, evt.Entity)
			assert.Equal(t, payload, evt.Payload)
		})
	}
}

package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusActive, true},
		{StatusArchived, true},
		{StatusDeleted, true},
		{Status(""), false},
		{Status("purged"), false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.status.Valid(), "status %q", tc.status)
	}
}

func TestNewRecord(t *testing.T) {
	key := uuid.New()
	r := NewRecord(key)

	assert.Equal(t, key, r.Key)
	assert.Equal(t, StatusActive, r.Status)
	assert.Equal(t, 1, r.Revision)
	assert.Equal(t, uuid.Nil, r.StorageID)
	assert.True(t, r.CreatedAt.IsZero())
}

type testDoc struct {
	Record
	Title string `json:"title"`
}

func TestMetaPromotion(t *testing.T) {
	d := &testDoc{Record: NewRecord(uuid.New()), Title: "t"}

	var v Versioned = d
	v.Meta().Status = StatusArchived
	assert.Equal(t, StatusArchived, d.Status)
}

func TestRecordExcludedFromJSON(t *testing.T) {
	d := &testDoc{Title: "hello"}
	d.Key = uuid.New()
	d.StorageID = uuid.New()
	d.Revision = 3
	d.CreatedAt = time.Now()

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"hello"}`, string(b))
}

package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/recvault/internal/apperr"
	"github.com/starford/recvault/internal/models"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      models.Input
		wantErr string
	}{
		{name: "valid", in: models.Input{Name: "a", Value: "1"}},
		{name: "empty name", in: models.Input{Value: "1"}, wantErr: "name is required"},
		{name: "missing value", in: models.Input{Name: "a"}, wantErr: "value is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatches(t *testing.T) {
	r := models.Record{ID: models.IntID(1700000000123), Name: "Database Password"}

	assert.True(t, Matches(r, "data"))
	assert.True(t, Matches(r, "PASSWORD"))
	assert.True(t, Matches(r, "0123"))
	assert.True(t, Matches(r, ""))
	assert.False(t, Matches(r, "token"))
}

func TestIDGenerator_SameTick(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	g := NewIDGenerator(func() time.Time { return fixed })

	a := g.Next(0)
	b := g.Next(0)
	assert.Equal(t, int64(1700000000000), a)
	assert.Equal(t, a+1, b)
}

func TestIDGenerator_RespectsFloor(t *testing.T) {
	g := NewIDGenerator(func() time.Time { return time.UnixMilli(10) })

	assert.Equal(t, int64(501), g.Next(500))
	assert.Equal(t, int64(502), g.Next(0))
}

func TestIDGenerator_ClockGoesBackwards(t *testing.T) {
	ticks := []int64{100, 50}
	i := 0
	g := NewIDGenerator(func() time.Time {
		ms := ticks[i]
		if i < len(ticks)-1 {
			i++
		}
		return time.UnixMilli(ms)
	})

	first := g.Next(0)
	second := g.Next(0)
	assert.Greater(t, second, first)
}

package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dab-demo/dab-demo/internal/paths"
)

func TestNew_SelectsImplementation(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Config{Host: "https://example.test", Token: "t", WarehouseID: "w"})
	require.NoError(t, err)
	assert.IsType(t, &RemoteSession{}, s)

	s, err = New(ctx, Config{Host: "https://example.test", TablesDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalSession{}, s)

	_, err = New(ctx, Config{})
	assert.Error(t, err)
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"trips", false},
		{"nyctaxi.trips", false},
		{"samples.nyctaxi.trips", false},
		{"_a.b_2.c", false},
		{"", true},
		{"a.b.c.d", true},
		{"trips; DROP TABLE x", true},
		{"1abc", true},
		{"a..b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// The shipped sample table must hold enough rows for the bundle's smoke test.
func TestShippedSampleTable(t *testing.T) {
	p := paths.FromSource()
	s, err := New(context.Background(), Config{TablesDir: p.Join("tests", "data")})
	require.NoError(t, err)
	defer s.Close()

	count, err := s.Table("samples.nyctaxi.trips").Count(context.Background())
	require.NoError(t, err)
	assert.Greater(t, count, int64(5))
}

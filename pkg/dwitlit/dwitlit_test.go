package dwitlit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		config  types.Config
		wantErr error
	}{
		{"memory", types.Config{Backend: types.BackendMemory}, nil},
		{"sqlite in memory", types.Config{Backend: types.BackendSQLite}, nil},
		{"sqlite on disk", types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}, nil},
		{"empty backend", types.Config{}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "badger"}, types.ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			defer s.Close()

			id, err := s.Create("hello", nil, []byte("world"), nil)
			require.NoError(t, err)
			assert.Equal(t, types.RecordID(0), id)
		})
	}
}

package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil query service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingQueryService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Query: &mockQueryService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.Equal(t, DefaultVersion, server.Version())
	})

	t.Run("version option", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{}}, WithVersion("1.4.0"))
		require.NoError(t, err)
		assert.Equal(t, "1.4.0", server.Version())
	})

	t.Run("empty version keeps default", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{}}, WithVersion(""))
		require.NoError(t, err)
		assert.Equal(t, DefaultVersion, server.Version())
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		var ports *Ports
		assert.ErrorIs(t, ports.Validate(), ErrMissingQueryService)
	})

	t.Run("query only is valid", func(t *testing.T) {
		ports := &Ports{Query: &mockQueryService{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Query:  &mockQueryService{},
			Ingest: &mockIngestService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

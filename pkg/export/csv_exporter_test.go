package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	e := NewCSVExporter()
	out, err := e.Render(Dataset{
		Headers: []string{"account", "status"},
		Rows: []map[string]string{
			{"account": "voter-a", "status": "APPROVED"},
			{"account": "voter-b"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "account,status\nvoter-a,APPROVED\nvoter-b,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	e := NewCSVExporter()
	_, err := e.Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterEmptyDatasetKeepsHeaderRow(t *testing.T) {
	e := NewCSVExporter()
	out, err := e.Render(Dataset{Headers: []string{"account"}})
	require.NoError(t, err)
	assert.Equal(t, "account\n", string(out))
}

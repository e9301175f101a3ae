package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_DefinesDashboard(t *testing.T) {
	tmpl := Templates()
	assert.NotNil(t, tmpl.Lookup("dashboard.tmpl"))
	assert.NotNil(t, tmpl.Lookup("modal"))
}

func TestTemplates_EscapesPatientData(t *testing.T) {
	var buf bytes.Buffer
	err := Templates().ExecuteTemplate(&buf, "dashboard.tmpl", map[string]interface{}{
		"Count": 1,
		"Patients": []map[string]interface{}{
			{"ID": "1", "FullName": "<script>x</script>", "HasDocument": false},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<script>x</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AR", initials("ana ruiz"))
	assert.Equal(t, "J", initials("  john "))
	assert.Equal(t, "ÁM", initials("Álvaro María López"))
	assert.Equal(t, "", initials(""))
}

package files

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave(t *testing.T) {
	resp := client.NewResponse(http.StatusOK, "", nil, []byte("payload"))
	io.ReadAll(resp.Body)

	path := filepath.Join(t.TempDir(), "nested", "out.bin")
	n, err := Save(resp, path, true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	again, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "payload", string(again), "body is rewound after saving")
}

func TestSaveRefusesErrorStatus(t *testing.T) {
	resp := client.NewResponse(http.StatusInternalServerError, "", nil, []byte("boom"))
	path := filepath.Join(t.TempDir(), "out.bin")

	_, err := Save(resp, path, false)
	assert.ErrorContains(t, err, "HTTP 500")
	assert.NoFileExists(t, path)
}

func TestSaveWithoutCreateDirs(t *testing.T) {
	resp := client.NewResponse(http.StatusOK, "", nil, []byte("x"))
	_, err := Save(resp, filepath.Join(t.TempDir(), "absent", "out.bin"), false)
	assert.Error(t, err)
}

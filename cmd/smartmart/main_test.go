package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/api/apitest"
	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/pages"
	"github.com/JonMunkholm/smartmart/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// run executes the root command against backend and returns stdout and
// stderr.
func run(t *testing.T, backend *apitest.Backend, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file", "", "--api-url", backend.URL(), "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestKinds(t *testing.T) {
	out, _, err := run(t, apitest.New(t), "kinds", "--locale", "en")
	require.NoError(t, err)

	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "products")
	assert.Contains(t, out, "Categories")
	assert.Contains(t, out, "id,product_id,quantity,total_price,date")
}

func TestValidate(t *testing.T) {
	backend := apitest.New(t)
	good := writeFile(t, "sales.csv", "id,product_id,quantity,total_price,date\n1,1,2,20,2024-01-01")
	bad := writeFile(t, "other.csv", "sku,qty\nA,1")

	t.Run("all accepted", func(t *testing.T) {
		out, _, err := run(t, backend, "validate", "sales", good)
		require.NoError(t, err)
		assert.Contains(t, out, "ok ")
		assert.Contains(t, out, "score=1.00")
	})

	t.Run("one rejected", func(t *testing.T) {
		out, _, err := run(t, backend, "validate", "sales", good, bad)
		require.ErrorIs(t, err, errRejectedFiles)
		assert.Contains(t, out, "rejected "+bad)
		assert.Contains(t, out, core.RejectionMessage(core.KindSales))
		assert.Contains(t, out, "missing: id, product_id")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, _, err := run(t, backend, "validate", "widgets", good)
		require.ErrorIs(t, err, core.ErrUnknownKind)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := run(t, backend, "validate", "sales", filepath.Join(t.TempDir(), "nope.csv"))
		require.Error(t, err)
	})

	// Nothing reaches the API.
	assert.Empty(t, backend.Uploads())
}

func TestImport(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		backend := apitest.New(t)
		path := writeFile(t, "categorias.csv", "name,description\nLivros,Papel")

		out, _, err := run(t, backend, "import", "categories", path)
		require.NoError(t, err)
		assert.Contains(t, out, "(1 inserted)")

		uploads := backend.Uploads()
		require.Len(t, uploads, 1)
		assert.Equal(t, "categories", uploads[0].Kind)
		assert.Equal(t, "categorias.csv", uploads[0].FileName)
	})

	t.Run("rejected", func(t *testing.T) {
		backend := apitest.New(t)
		path := writeFile(t, "x.csv", "sku,qty\nA,1")

		_, stderr, err := run(t, backend, "import", "categories", path)
		require.ErrorIs(t, err, pages.ErrRejected)
		assert.Contains(t, stderr, core.RejectionMessage(core.KindCategories))
		assert.Empty(t, backend.Uploads())
	})

	t.Run("backend failure", func(t *testing.T) {
		backend := apitest.New(t)
		backend.Fail("POST /upload/csv/{kind}", http.StatusBadRequest, "Arquivo inválido ou corrompido.")
		path := writeFile(t, "vendas.csv", "id,product_id,quantity,total_price,date\n1,1,1,10,2024-01-01")

		_, stderr, err := run(t, backend, "import", "sales", path)
		require.Error(t, err)
		assert.Contains(t, stderr, "Arquivo inválido ou corrompido.")
	})
}

func TestExport(t *testing.T) {
	backend := apitest.New(t)

	t.Run("stdout", func(t *testing.T) {
		out, _, err := run(t, backend, "export", "categories")
		require.NoError(t, err)
		assert.Equal(t, "id,name,description\n1,Eletrônicos,", out)
	})

	t.Run("directory uses default name", func(t *testing.T) {
		dir := t.TempDir()
		_, stderr, err := run(t, backend, "export", "products", "-o", dir)
		require.NoError(t, err)
		assert.Contains(t, stderr, "wrote ")

		data, err := os.ReadFile(filepath.Join(dir, "produtos.csv"))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("id,name,category_id,price,stock,description\n")))
	})

	t.Run("server rendering", func(t *testing.T) {
		out, _, err := run(t, backend, "export", "sales", "--server")
		require.NoError(t, err)
		assert.Contains(t, out, "id,product_id,quantity,total_price,date")
		assert.Equal(t, 1, backend.Calls("GET /reports/export-sales.csv"))
	})

	t.Run("no server rendering for categories", func(t *testing.T) {
		_, _, err := run(t, backend, "export", "categories", "--server")
		require.Error(t, err)
	})
}

func TestReport(t *testing.T) {
	backend := apitest.New(t)

	for _, local := range []bool{false, true} {
		name := "server"
		if local {
			name = "local"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			args := []string{"report", "-o", dir}
			if local {
				args = append(args, "--local")
			}

			_, stderr, err := run(t, backend, args...)
			require.NoError(t, err)
			assert.Contains(t, stderr, report.SheetSales)

			data, err := os.ReadFile(filepath.Join(dir, api.ReportFileName))
			require.NoError(t, err)
			summary, err := report.Inspect(data)
			require.NoError(t, err)

			sales, ok := summary.Sheet(report.SheetSales)
			require.True(t, ok)
			assert.Equal(t, 3, sales.DataRows)
		})
	}
}

func TestCollection(t *testing.T) {
	out, _, err := run(t, apitest.New(t), "collection", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "SmartMart Solutions API")
}

func TestStats(t *testing.T) {
	t.Run("summary", func(t *testing.T) {
		out, _, err := run(t, apitest.New(t), "stats", "--top", "1")
		require.NoError(t, err)

		assert.Contains(t, out, report.LabelRevenue)
		assert.Contains(t, out, "R$ 3,449.90")
		assert.Contains(t, out, "1.  TV")
		assert.NotContains(t, out, "Radio")
	})

	t.Run("fails closed", func(t *testing.T) {
		backend := apitest.New(t)
		backend.Fail("GET /sales", http.StatusInternalServerError, "")

		out, stderr, err := run(t, backend, "stats", "--locale", "en")
		require.Error(t, err)
		assert.Empty(t, out)
		assert.NotEmpty(t, stderr)
	})
}

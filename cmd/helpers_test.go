package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// fakeTracker serves wiql and workitemsbatch for the Fabrikam project
type fakeTracker struct {
	ids     []int
	asOf    string
	batches [][]int
	asOfs   []string
}

func newFakeTracker(n int) *fakeTracker {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = 100 + i
	}
	return &fakeTracker{ids: ids, asOf: "2024-05-01T08:00:00Z"}
}

func (f *fakeTracker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/Fabrikam/_apis/wit/wiql"):
		refs := make([]map[string]interface{}, 0, len(f.ids))
		for _, id := range f.ids {
			refs = append(refs, map[string]interface{}{"id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"asOf": f.asOf, "workItems": refs})
	case strings.HasSuffix(r.URL.Path, "/Fabrikam/_apis/wit/workitemsbatch"):
		var req struct {
			IDs    []int    `json:"ids"`
			Fields []string `json:"fields"`
			AsOf   string   `json:"asOf"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.batches = append(f.batches, req.IDs)
		f.asOfs = append(f.asOfs, req.AsOf)

		items := make([]map[string]interface{}, 0, len(req.IDs))
		for _, id := range req.IDs {
			fields := map[string]interface{}{
				"System.Id":    id,
				"System.Title": fmt.Sprintf("Epic %d", id),
				"System.State": "Active",
			}
			// odd ids have no rank
			if id%2 == 0 {
				fields["Microsoft.VSTS.Common.StackRank"] = float64(id * 10)
			}
			items = append(items, map[string]interface{}{"id": id, "fields": fields})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"count": len(items), "value": items})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"TF200016: project does not exist"}`))
	}
}

// writeTestConfig writes a config pointing at serverURL and returns its path
func writeTestConfig(t *testing.T, serverURL string, extra string) string {
	t.Helper()

	content := fmt.Sprintf(`connection:
  endpoint: %s/tfs
  collection: DefaultCollection
  project: Fabrikam
  username: builder
  password: s3cret
  password_source: config
%s`, serverURL, extra)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func startTracker(t *testing.T, tracker *fakeTracker) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(tracker)
	t.Cleanup(srv.Close)
	return srv
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and returns stdout and stderr
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

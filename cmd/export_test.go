package cmd

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyenthenguyen/docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDocx(t *testing.T, path, body string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	files := map[string]string{
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestExportCommand(t *testing.T) {
	tracker := newFakeTracker(12)
	srv := startTracker(t, tracker)

	dir := t.TempDir()
	template := filepath.Join(dir, "SRS.docx")
	output := filepath.Join(dir, "SRS-filled.docx")
	writeDocx(t, template, "<w:p><w:r><w:t>Epics: &lt;&lt;EpicTitle&gt;&gt;</w:t></w:r></w:p>")

	cfgPath := writeTestConfig(t, srv.URL, "template:\n  path: "+template+"\n")

	stdout, stderr, err := executeCommand(t, "", "export", "--config", cfgPath, "--output", output, "--strip-tags")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "Query Results: 10 items found", lines[0])
	assert.Equal(t, "Epic 100", lines[1])
	assert.Contains(t, stderr, "Wrote 10 titles to "+output)

	r, err := docx.ReadDocxFile(output)
	require.NoError(t, err)
	defer r.Close()
	content := r.Editable().GetContent()

	assert.Contains(t, content, "Epics: Epic 100Epic 101")
	assert.True(t, strings.Index(content, "Epic 108") < strings.Index(content, "Epic 109"))
	assert.NotContains(t, content, "Epic 110")
	assert.NotContains(t, content, "&lt;&lt;EpicTitle&gt;&gt;")
}

func TestExportCommand_MissingTemplate(t *testing.T) {
	srv := startTracker(t, newFakeTracker(1))
	cfgPath := writeTestConfig(t, srv.URL, "")

	_, _, err := executeCommand(t, "", "export", "--config", cfgPath, "--template", filepath.Join(t.TempDir(), "missing.docx"))
	assert.ErrorContains(t, err, "failed to read template")
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scriptpack/internal/config"
)

const testHostDoc = `<!DOCTYPE html>
<html>
<head>
    <title>BrowserBox</title>
</head>
<body>
    <div id="scriptZoneInstructions">Drop Python scripts here to get started</div>
    <script>
        const pythonScripts = [];

        function log(message, level) {
            console.log(message);
        }

        function updateScriptsList() {
        }

        function updateFileDropZone() {
        }

        function updateRunButtonState() {
        }

        function init() {
            updateScriptsList();
            log('App initialized and ready');
        }

        // Start the app
        init();
    </script>
</body>
</html>
`

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scripts.Dir = dir
	cfg.Document.Target = filepath.Join(dir, "BrowserBox.html")
	cfg.Document.Output = filepath.Join(dir, "BrowserBox_with_scripts.html")
	return cfg
}

func TestBuildOnce(t *testing.T) {
	t.Run("embeds scripts and writes the output", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "BrowserBox.html"), []byte(testHostDoc), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.py"),
			[]byte("# required_inputs: names.csv\nprint('hi')\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "embed_scripts.py"),
			[]byte("print('legacy embedder')\n"), 0644))

		cfg := testConfig(dir)
		result, err := buildOnce(cfg, true, true, zap.NewNop())
		require.NoError(t, err)

		require.Len(t, result.Records, 1)
		assert.Equal(t, "greet.py", result.Records[0].Name)
		assert.Equal(t, []string{"names.csv"}, result.Records[0].RequiredInputs)
		assert.Equal(t, []string{}, result.Records[0].DerivedInputs)
		assert.True(t, result.Report.Complete())

		out, err := os.ReadFile(cfg.Document.Output)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"name": "greet.py"`)
		assert.NotContains(t, string(out), "embed_scripts.py")
		assert.Contains(t, string(out), "loadEmbeddedScripts();")

		// The input document is never modified.
		original, err := os.ReadFile(cfg.Document.Target)
		require.NoError(t, err)
		assert.Equal(t, testHostDoc, string(original))
	})

	t.Run("zero scripts writes nothing", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "BrowserBox.html"), []byte(testHostDoc), 0644))

		cfg := testConfig(dir)
		result, err := buildOnce(cfg, true, true, zap.NewNop())
		require.NoError(t, err)
		assert.Empty(t, result.Records)

		_, err = os.Stat(cfg.Document.Output)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing target document aborts before any write", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.py"), []byte("print('hi')\n"), 0644))

		cfg := testConfig(dir)
		_, err := buildOnce(cfg, true, true, zap.NewNop())
		require.Error(t, err)

		_, err = os.Stat(cfg.Document.Output)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("document without anchors fails loudly", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "BrowserBox.html"),
			[]byte("<html><body>no script region</body></html>"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.py"), []byte("print('hi')\n"), 0644))

		cfg := testConfig(dir)
		_, err := buildOnce(cfg, true, true, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no injection anchors")
	})
}

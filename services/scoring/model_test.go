package scoringsvc

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "scoring")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("valid", func(t *testing.T) {
		m, err := Load(write("ok.yaml", "name: test\nintercept: 10\ncoefficients: [1, 0.5, 2]\n"))
		require.NoError(t, err)
		assert.Equal(t, "test", m.Name)

		score, err := m.Score([]float64{10, 90, 8})
		require.NoError(t, err)
		assert.InDelta(t, 81.0, score, 1e-9)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("wrong coefficient count", func(t *testing.T) {
		_, err := Load(write("short.yaml", "intercept: 1\ncoefficients: [1, 2]\n"))
		assert.EqualError(t, err, "model has 2 coefficients, want 3")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := Load(write("typo.yaml", "intercpt: 1\ncoefficients: [1, 2, 3]\n"))
		assert.Error(t, err)
	})
}

func TestLinearModel_Score(t *testing.T) {
	m := &LinearModel{Intercept: 1, Coefficients: []float64{1, 1, 1}}

	_, err := m.Score([]float64{1, 2})
	assert.EqualError(t, err, "got 2 features, want 3")
}

func TestDefaultModelFile(t *testing.T) {
	m, err := Load(filepath.Join("..", "..", "assets", "models", "student_model.yaml"))
	require.NoError(t, err)

	score, err := m.Score([]float64{10, 90, 8})
	require.NoError(t, err)
	assert.True(t, score > 0 && score < 120, "implausible score %v", score)
}

// Package scoringsvc loads the pre-trained student scoring model.
package scoringsvc

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/trezcool/alama/core/prediction"
	"github.com/trezcool/alama/core/student"
)

// LinearModel is a linear regression over student.Student.Features.
// It is immutable once loaded and safe for concurrent use.
type LinearModel struct {
	Name         string    `yaml:"name"`
	Version      string    `yaml:"version"`
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`
}

var _ prediction.Scorer = (*LinearModel)(nil)

// Load reads a LinearModel from a YAML file.
func Load(path string) (*LinearModel, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading model file")
	}
	return Parse(data)
}

func Parse(data []byte) (*LinearModel, error) {
	var m LinearModel
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, errors.Wrap(err, "decoding model")
	}
	if len(m.Coefficients) != student.FeatureCount {
		return nil, errors.Errorf("model has %d coefficients, want %d", len(m.Coefficients), student.FeatureCount)
	}
	return &m, nil
}

func (m *LinearModel) Score(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, errors.Errorf("got %d features, want %d", len(features), len(m.Coefficients))
	}
	score := m.Intercept
	for i, x := range features {
		score += m.Coefficients[i] * x
	}
	return score, nil
}

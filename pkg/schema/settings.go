package schema

import (
	"fmt"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// LikertSettings configures a Likert scale question.
type LikertSettings struct {
	Scale      int    `mapstructure:"scale"`
	LeftLabel  string `mapstructure:"left_label"`
	RightLabel string `mapstructure:"right_label"`
}

// SliderSettings configures range and multi-value slider questions.
type SliderSettings struct {
	Min  float64 `mapstructure:"min"`
	Max  float64 `mapstructure:"max"`
	Step float64 `mapstructure:"step"`
	// Handles only applies to multi-value sliders.
	Handles int `mapstructure:"handles"`
}

// MatrixSettings configures a 2D matrix question.
type MatrixSettings struct {
	Rows    []string `mapstructure:"rows"`
	Columns []string `mapstructure:"columns"`
}

// TagsSettings configures a free tags question.
type TagsSettings struct {
	MaxTags     int      `mapstructure:"max_tags"`
	Suggestions []string `mapstructure:"suggestions"`
}

// DecodeSettings decodes a question's free-form settings map into out, which
// must be a pointer to one of the typed settings structs. Unknown keys are an
// error so typos in form definitions surface at load time.
func DecodeSettings(q *domain.Question, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(q.Settings); err != nil {
		return fmt.Errorf("question %q settings: %w", q.ID, err)
	}
	return nil
}

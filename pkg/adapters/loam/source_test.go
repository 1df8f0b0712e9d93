package loam

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellbeingDoc = `---
id: wellbeing
title: Wellbeing check-in
steps:
  - id: s1
    questions:
      - id: mood
        type: radio
        title: Mood today
        options:
          - id: good
            label: Good
          - id: bad
            label: Bad
      - id: why_bad
        type: long_text
        title: What went wrong?
        conditions:
          rules:
            - question_id: mood
              operator: equals
              value: bad
---
A quick check-in. Answers stay private.`

func setupVault(t *testing.T) (string, core.Repository) {
	t.Helper()
	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)
	repo, err := loam.Init(dir)
	require.NoError(t, err)
	return dir, repo
}

func newSource(t *testing.T) (*Source, core.Repository) {
	t.Helper()
	_, repo := setupVault(t)
	return New(loam.NewTypedRepository[FormMetadata](repo)), repo
}

func TestSource_Load(t *testing.T) {
	ctx := context.Background()
	src, repo := newSource(t)
	require.NoError(t, repo.Save(ctx, core.Document{ID: "wellbeing.md", Content: wellbeingDoc}))

	form, err := src.Load(ctx, "wellbeing")
	require.NoError(t, err)

	assert.Equal(t, "wellbeing", form.ID)
	assert.Equal(t, "A quick check-in. Answers stay private.", form.Intro)
	require.Len(t, form.Steps, 1)

	why := form.Steps[0].QuestionByID("why_bad")
	require.NotNil(t, why)
	require.True(t, why.Conditional())
	assert.Equal(t, domain.OpEquals, why.Conditions.Rules[0].Operator)
	assert.Equal(t, "bad", why.Conditions.Rules[0].Value)
}

func TestSource_Load_InvalidForm(t *testing.T) {
	ctx := context.Background()
	src, repo := newSource(t)
	require.NoError(t, repo.Save(ctx, core.Document{ID: "broken.md", Content: `---
id: broken
steps:
  - id: s1
    questions:
      - id: q1
        type: teleport
---
`}))

	_, err := src.Load(ctx, "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown question type")
}

func TestSource_Load_Missing(t *testing.T) {
	src, _ := newSource(t)
	_, err := src.Load(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestSource_List(t *testing.T) {
	ctx := context.Background()
	src, repo := newSource(t)
	require.NoError(t, repo.Save(ctx, core.Document{ID: "wellbeing.md", Content: wellbeingDoc}))
	require.NoError(t, repo.Save(ctx, core.Document{ID: "onboarding.md", Content: `---
title: Onboarding
steps:
  - id: s1
    questions:
      - id: name
        type: short_text
---
`}))

	ids, err := src.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"wellbeing", "onboarding"}, ids)
}

func TestSource_List_Collision(t *testing.T) {
	ctx := context.Background()
	src, repo := newSource(t)
	// A frontmatter id colliding with another file's filename-derived id.
	require.NoError(t, repo.Save(ctx, core.Document{ID: "wellbeing.md", Content: wellbeingDoc}))
	require.NoError(t, repo.Save(ctx, core.Document{ID: "other.md", Content: `---
id: wellbeing
steps:
  - id: s1
    questions:
      - id: q
        type: short_text
---
`}))

	_, err := src.List(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision")
}

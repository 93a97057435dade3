package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromInputTextsRendersCanonicalJSON(t *testing.T) {
	prompt := FromInputTexts([]InputText{{
		Headline: StringPtr("H"),
		Body:     []Paragraph{{Text: "a <b> & c"}},
	}}, "do it")

	got, err := prompt.Render()
	require.NoError(t, err)

	want := `{
  "user_prompt": "do it",
  "input_texts": [
    {
      "metadata": {
        "created_at": null,
        "num_words": null,
        "source": null
      },
      "headline": "H",
      "teaser": null,
      "body": [
        {
          "subheadline": null,
          "text": "a <b> & c"
        }
      ]
    }
  ]
}`
	assert.Equal(t, want, got)
}

func TestFromOutlineRendersUserPromptFirst(t *testing.T) {
	got, err := FromOutline(Outline{Paragraphs: []Paragraph{{Subheadline: StringPtr("Intro"), Text: "why"}}}, "expand").Render()
	require.NoError(t, err)

	want := `{
  "user_prompt": "expand",
  "outline": {
    "paragraphs": [
      {
        "subheadline": "Intro",
        "text": "why"
      }
    ]
  }
}`
	assert.Equal(t, want, got)
}

func TestEmptyEnvelopesRenderEmptyLists(t *testing.T) {
	got, err := FromInputTexts(nil, "x").Render()
	require.NoError(t, err)
	assert.Contains(t, got, `"input_texts": []`)

	got, err = FromOutline(Outline{}, "x").Render()
	require.NoError(t, err)
	assert.Contains(t, got, `"paragraphs": []`)
}

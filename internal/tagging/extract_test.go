package tagging

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

type extractCase struct {
	Input    string   `json:"input"`
	Hashtags []string `json:"hashtags"`
	Mentions []string `json:"mentions"`
}

func TestExtract_Golden(t *testing.T) {
	inputs := []string{
		"Hello #world @bob",
		"#Go #go #GoLang rocks",
		"ping @Alice and @alice_2, cc @bob!",
		"no tags here",
		"edge#mid@mid # @ #_ok",
	}

	cases := make([]extractCase, 0, len(inputs))
	for _, in := range inputs {
		res := Extract(in)
		cases = append(cases, extractCase{Input: in, Hashtags: res.Hashtags, Mentions: res.Mentions})
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.AssertJson(t, "extract", cases)
}

func TestExtract_PreservesDuplicatesAndCase(t *testing.T) {
	res := Extract("#News #news @Bob @Bob")
	assert.Equal(t, []string{"news", "news"}, res.Hashtags)
	assert.Equal(t, []string{"Bob", "Bob"}, res.Mentions)
	assert.Equal(t, []string{"Bob"}, UniqueMentions(res.Mentions))
}

func TestExtract_Empty(t *testing.T) {
	res := Extract("")
	assert.NotNil(t, res.Hashtags)
	assert.NotNil(t, res.Mentions)
	assert.Empty(t, res.Hashtags)
	assert.Empty(t, res.Mentions)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "caf\u00e9", Normalize("cafe\u0301"))
}

package persona

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/domain/core"
	"moodlens/domain/record"
)

func centroid() Profile {
	return Profile{
		Cluster:                  2,
		Age:                      23.6,
		Gender:                   record.GenderFemale,
		Platform:                 record.PlatformSnapchat,
		DailyScreenTimeMin:       412.5,
		SocialMediaTimeMin:       251.49,
		SleepHours:               6.2649,
		PhysicalActivityMin:      18.2,
		InteractionNegativeRatio: 0.3,
		AnxietyLevel:             4.5,
		StressLevel:              7.51,
		MoodLevel:                3.2,
		MentalState:              record.MentalStateStressed,
	}
}

func TestProject_Rounding(t *testing.T) {
	ref := core.NewDate(2024, 12, 31)
	r, err := NewProjector(ref).Project(centroid())
	require.NoError(t, err)

	assert.Equal(t, 24, r.Age)
	assert.Equal(t, 412, r.DailyScreenTimeMin) // half to even
	assert.Equal(t, 251, r.SocialMediaTimeMin)
	assert.Equal(t, 6.3, r.SleepHours)
	assert.Equal(t, 4, r.AnxietyLevel)
	assert.Equal(t, 8, r.StressLevel)
	assert.Equal(t, 3, r.MoodLevel)
	assert.True(t, ref.Equal(r.Date))
	assert.Equal(t, record.PlatformSnapchat, r.Platform)
}

func TestProject_RatioDecomposition(t *testing.T) {
	r, err := NewProjector(core.NewDate(2024, 1, 1)).Project(centroid())
	require.NoError(t, err)

	assert.Equal(t, 3, r.NegativeInteractionsCount)
	assert.Equal(t, 7, r.PositiveInteractionsCount)
	assert.Equal(t, NominalInteractions, r.InteractionTotal())
	assert.InDelta(t, 0.3, r.InteractionNegativeRatio(), 1e-12)
}

func TestProject_BoundsOutOfRangeCentroids(t *testing.T) {
	p := centroid()
	p.InteractionNegativeRatio = 1.7
	p.StressLevel = 10.8
	p.MoodLevel = -0.4
	p.SleepHours = 30

	r, err := NewProjector(core.NewDate(2024, 1, 1)).Project(p)
	require.NoError(t, err)
	assert.Equal(t, 10, r.NegativeInteractionsCount)
	assert.Equal(t, 0, r.PositiveInteractionsCount)
	assert.Equal(t, 10, r.StressLevel)
	assert.Equal(t, 0, r.MoodLevel)
	assert.NoError(t, r.Validate())

	p = centroid()
	p.Platform = "Orkut"
	_, err = NewProjector(core.NewDate(2024, 1, 1)).Project(p)
	assert.ErrorIs(t, err, core.ErrInvalidRecord)
}

func TestCatalog_ExplicitClusterIndex(t *testing.T) {
	a, b := centroid(), centroid()
	a.Cluster, b.Cluster = 5, 0
	b.Name = "Custom"

	c, err := NewCatalog([]Profile{a, b}, []Details{{Cluster: 5, Name: "Older TikTok", Bulletpoints: []string{"Moderate strain"}}})
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Cluster 0 - Custom", list[0].Label)
	assert.Equal(t, "Cluster 5 - Older TikTok User With Moderate Strain", list[1].Label)
	assert.Nil(t, list[0].Details)

	p, err := c.Get(5)
	require.NoError(t, err)
	require.NotNil(t, p.Details)
	assert.Equal(t, "Moderate strain", p.Details.Bulletpoints[0])

	_, err = c.Get(3)
	assert.ErrorIs(t, err, core.ErrPersonaNotFound)
	assert.True(t, core.IsNotFoundError(err))

	_, err = NewCatalog([]Profile{a, a}, nil)
	assert.True(t, core.IsConfigError(err))
}

func TestLoadDetails(t *testing.T) {
	doc := `
personas:
  - cluster: 4
    name: Healthy Older Facebook User
    name_detailed: The Balanced Veteran
    image_path: images/persona_4.png
    bulletpoints:
      - Sleeps well
      - Low screen time
`
	details, err := LoadDetails(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, 4, details[0].Cluster)
	assert.Len(t, details[0].Bulletpoints, 2)

	details, err = LoadDetails(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, details)
}

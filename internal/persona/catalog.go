package persona

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"moodlens/domain/core"
)

// DefaultNames labels the seven clusters of the shipped segmentation
var DefaultNames = map[int]string{
	0: "Young WhatsApp Overloaded Male",
	1: "Female Facebook Worrier",
	2: "Snapchat-Heavy Stressed Female",
	3: "Female YouTube High-Use Stressed Group",
	4: "Healthy Older Facebook User",
	5: "Older TikTok User With Moderate Strain",
	6: "TikTok-Addicted Young Stressed Male",
}

// Details is the authored description of a cluster
type Details struct {
	Cluster      int      `yaml:"cluster" json:"cluster"`
	Name         string   `yaml:"name" json:"name"`
	NameDetailed string   `yaml:"name_detailed" json:"name_detailed,omitempty"`
	ImagePath    string   `yaml:"image_path" json:"image_path,omitempty"`
	Bulletpoints []string `yaml:"bulletpoints" json:"bulletpoints,omitempty"`
}

// LoadDetails reads a YAML list of persona descriptions
func LoadDetails(r io.Reader) ([]Details, error) {
	var doc struct {
		Personas []Details `yaml:"personas"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode persona details: %w", err)
	}
	return doc.Personas, nil
}

// Persona is a profile with its display label and optional description
type Persona struct {
	Label   string   `json:"label"`
	Profile Profile  `json:"profile"`
	Details *Details `json:"details,omitempty"`
}

// Catalog indexes personas by cluster
type Catalog struct {
	personas  []Persona
	byCluster map[int]int
}

// NewCatalog pairs each profile with its details by cluster index.
// Row order of the inputs carries no meaning.
func NewCatalog(profiles []Profile, details []Details) (*Catalog, error) {
	info := make(map[int]*Details, len(details))
	for i := range details {
		info[details[i].Cluster] = &details[i]
	}

	sorted := make([]Profile, len(profiles))
	copy(sorted, profiles)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cluster < sorted[j].Cluster })

	c := &Catalog{byCluster: make(map[int]int, len(sorted))}
	for _, p := range sorted {
		if _, dup := c.byCluster[p.Cluster]; dup {
			return nil, core.NewConfigError("cluster", fmt.Sprintf("duplicate cluster index %d", p.Cluster))
		}
		c.byCluster[p.Cluster] = len(c.personas)
		c.personas = append(c.personas, Persona{
			Label:   Label(p),
			Profile: p,
			Details: info[p.Cluster],
		})
	}
	return c, nil
}

// Label reads "Cluster 3 - Female YouTube High-Use Stressed Group"
func Label(p Profile) string {
	name := p.Name
	if name == "" {
		name = DefaultNames[p.Cluster]
	}
	if name == "" {
		name = "Unnamed"
	}
	return fmt.Sprintf("Cluster %d - %s", p.Cluster, name)
}

// List returns personas ordered by cluster index
func (c *Catalog) List() []Persona {
	out := make([]Persona, len(c.personas))
	copy(out, c.personas)
	return out
}

// Len is the number of clusters
func (c *Catalog) Len() int { return len(c.personas) }

// Get finds a persona by cluster index
func (c *Catalog) Get(cluster int) (Persona, error) {
	i, ok := c.byCluster[cluster]
	if !ok {
		return Persona{}, fmt.Errorf("%w: cluster %d", core.ErrPersonaNotFound, cluster)
	}
	return c.personas[i], nil
}

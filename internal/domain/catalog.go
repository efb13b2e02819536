package domain

// Link is a named hyperlink attached to an item.
type Link struct {
	Text string `yaml:"text" json:"text"`
	URL  string `yaml:"url" json:"url"`
}

// Item is a single checklist entry, the unit of completion tracking.
type Item struct {
	ID       string `yaml:"id" json:"id"`
	Text     string `yaml:"text" json:"text"`
	Tooltip  string `yaml:"tooltip,omitempty" json:"tooltip,omitempty"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Links    []Link `yaml:"links,omitempty" json:"links,omitempty"`
}

// Section groups items within a phase and is tagged with the program
// variants it applies to.
type Section struct {
	Title         string        `yaml:"title" json:"title"`
	Applicability []ProjectType `yaml:"applicability" json:"applicability"`
	Items         []Item        `yaml:"items" json:"items"`
}

// AppliesTo reports whether the section carries the given tag.
func (s *Section) AppliesTo(pt ProjectType) bool {
	for _, a := range s.Applicability {
		if a == pt {
			return true
		}
	}
	return false
}

// Badge returns the variant badge shown next to single-variant sections,
// or "" for sections that apply to both.
func (s *Section) Badge() string {
	mapTag, liteTag := s.AppliesTo(ProjectMAP), s.AppliesTo(ProjectMAPLite)
	switch {
	case mapTag && !liteTag:
		return "MAP Only"
	case liteTag && !mapTag:
		return "MAP Lite Only"
	default:
		return ""
	}
}

// Phase is a top-level checklist grouping.
type Phase struct {
	ID       string    `yaml:"id" json:"id"`
	Title    string    `yaml:"title" json:"title"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// Resource is a reference link listed above the checklist.
type Resource struct {
	Title       string `yaml:"title" json:"title"`
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description" json:"description"`
}

// Metadata describes the catalog document itself.
type Metadata struct {
	Title       string `yaml:"title" json:"title"`
	Version     string `yaml:"version" json:"version"`
	LastUpdated string `yaml:"lastUpdated" json:"lastUpdated"`
}

// Catalog is the immutable checklist tree. It is built once at startup and
// shared read-only by every component.
type Catalog struct {
	Metadata  Metadata   `yaml:"metadata" json:"metadata"`
	Resources []Resource `yaml:"resources" json:"resources"`
	Phases    []Phase    `yaml:"phases" json:"phases"`

	index map[string]*Item
}

// Index builds the item lookup table. Loaders call it once after decoding;
// lookups on an unindexed catalog fall back to a linear scan.
func (c *Catalog) Index() {
	c.index = make(map[string]*Item)
	for pi := range c.Phases {
		for si := range c.Phases[pi].Sections {
			items := c.Phases[pi].Sections[si].Items
			for ii := range items {
				c.index[items[ii].ID] = &items[ii]
			}
		}
	}
}

// Item returns the item with the given ID.
func (c *Catalog) Item(id string) (*Item, bool) {
	if c.index != nil {
		it, ok := c.index[id]
		return it, ok
	}
	for pi := range c.Phases {
		for si := range c.Phases[pi].Sections {
			items := c.Phases[pi].Sections[si].Items
			for ii := range items {
				if items[ii].ID == id {
					return &items[ii], true
				}
			}
		}
	}
	return nil, false
}

// Phase returns the phase with the given ID.
func (c *Catalog) Phase(id string) (*Phase, bool) {
	for i := range c.Phases {
		if c.Phases[i].ID == id {
			return &c.Phases[i], true
		}
	}
	return nil, false
}

// ItemIDs returns every item ID in catalog order.
func (c *Catalog) ItemIDs() []string {
	var ids []string
	for _, p := range c.Phases {
		for _, s := range p.Sections {
			for _, it := range s.Items {
				ids = append(ids, it.ID)
			}
		}
	}
	return ids
}

// PhaseIDs returns every phase ID in catalog order.
func (c *Catalog) PhaseIDs() []string {
	ids := make([]string, 0, len(c.Phases))
	for _, p := range c.Phases {
		ids = append(ids, p.ID)
	}
	return ids
}

package workspace

import (
	"slices"

	"github.com/starford/jarvis/internal/models"
)

// Projects owns the study project collection.
type Projects struct {
	ids   *IDGen
	items []models.Project
}

// NewProjects creates an empty store.
func NewProjects(ids *IDGen) *Projects {
	return &Projects{ids: ids, items: []models.Project{}}
}

// List returns a deep copy of every project.
func (s *Projects) List() []models.Project {
	out := make([]models.Project, len(s.items))
	for i, p := range s.items {
		out[i] = cloneProject(p)
	}
	return out
}

// Replace swaps in a loaded collection.
func (s *Projects) Replace(ps []models.Project) {
	s.items = make([]models.Project, len(ps))
	for i, p := range ps {
		s.items[i] = cloneProject(p)
	}
}

// Add stores p. The project always gets a fresh id; chapters and subtopics
// keep theirs when present. Missing statuses default to pending.
func (s *Projects) Add(p models.Project) models.Project {
	p = cloneProject(p)
	p.ID = s.ids.Next()
	if p.Chapters == nil {
		p.Chapters = []models.Chapter{}
	}
	for i := range p.Chapters {
		c := &p.Chapters[i]
		if c.ID == "" {
			c.ID = s.ids.Next()
		}
		if c.Subtopics == nil {
			c.Subtopics = []models.Subtopic{}
		}
		for j := range c.Subtopics {
			st := &c.Subtopics[j]
			if st.ID == "" {
				st.ID = s.ids.Next()
			}
			if st.Status == "" {
				st.Status = models.StatusPending
			}
		}
	}
	s.items = append(s.items, p)
	return cloneProject(p)
}

// Find returns the project with id.
func (s *Projects) Find(id string) (models.Project, bool) {
	i := slices.IndexFunc(s.items, func(p models.Project) bool { return p.ID == id })
	if i < 0 {
		return models.Project{}, false
	}
	return cloneProject(s.items[i]), true
}

func cloneProject(p models.Project) models.Project {
	p.Chapters = slices.Clone(p.Chapters)
	for i := range p.Chapters {
		p.Chapters[i].Subtopics = slices.Clone(p.Chapters[i].Subtopics)
	}
	if p.Metadata != nil {
		m := *p.Metadata
		m.Tags = slices.Clone(m.Tags)
		p.Metadata = &m
	}
	return p
}

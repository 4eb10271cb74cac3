package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

const datePlaceholder = "{{date}}"

var builtinTemplates = []models.Template{
	{ID: "meeting-notes", Name: "Meeting Notes", Category: "Work", Content: `# Meeting Notes

**Date:** {{date}}
**Attendees:**
**Agenda:**

## Discussion Points
-

## Action Items
- [ ]
- [ ]

## Next Steps
-

## Notes
`},
	{ID: "daily-journal", Name: "Daily Journal", Category: "Personal", Content: `# Daily Journal - {{date}}

## Today's Highlights
-

## Mood

## Gratitude
-
-
-

## Tomorrow's Goals
-
-

## Reflection
`},
	{ID: "project-planning", Name: "Project Planning", Category: "Work", Content: `# Project Plan

**Project Name:**
**Start Date:** {{date}}
**Deadline:**

## Objectives
-

## Milestones
- [ ]
- [ ]
- [ ]

## Resources Needed
-

## Risks & Mitigation
-

## Success Criteria
-
`},
	{ID: "book-review", Name: "Book Review", Category: "Personal", Content: `# Book Review

**Title:**
**Author:**
**Rating:** 5/5
**Date Finished:** {{date}}

## Summary


## Key Takeaways
-
-
-

## Favorite Quotes
>

## Would I Recommend?
Yes/No -

## Notes
`},
	{ID: "recipe", Name: "Recipe", Category: "Personal", Content: `# Recipe Name

**Prep Time:**
**Cook Time:**
**Servings:**
**Difficulty:** Easy/Medium/Hard

## Ingredients
-
-
-

## Instructions
1.
2.
3.

## Notes
-
`},
	{ID: "travel-planning", Name: "Travel Planning", Category: "Personal", Content: `# Travel Plan

**Destination:**
**Dates:**
**Budget:**

## Itinerary
### Day 1
-

### Day 2
-

## Packing List
- [ ]
- [ ]
- [ ]

## Important Info
- **Hotel:**
- **Flight:**
- **Emergency Contacts:**

## Places to Visit
-

## Local Food to Try
-
`},
	{ID: "workout-log", Name: "Workout Log", Category: "Personal", Content: `# Workout Log - {{date}}

**Duration:**
**Type:** Cardio/Strength/Mixed

## Exercises
### Exercise 1
- Sets:
- Reps:
- Weight:

### Exercise 2
- Sets:
- Reps:
- Weight:

## Notes
- How I felt:
- Energy level:
- Next time:
`},
	{ID: "idea-brainstorming", Name: "Idea Brainstorming", Category: "Ideas", Content: `# Brainstorming Session

**Topic:**
**Date:** {{date}}

## Initial Thoughts
-

## Ideas
1.
2.
3.

## Best Ideas
-

## Next Steps
- [ ]
- [ ]

## Resources/Research Needed
-
`},
}

// TemplateService serves the built-in note templates with today's date
// filled in.
type TemplateService struct {
	templates []models.Template
}

func NewTemplateService() *TemplateService {
	return &TemplateService{templates: builtinTemplates}
}

func (s *TemplateService) List() []models.Template {
	date := now().Format("2006-01-02")
	out := make([]models.Template, len(s.templates))
	for i, t := range s.templates {
		t.Content = strings.ReplaceAll(t.Content, datePlaceholder, date)
		out[i] = t
	}
	return out
}

func (s *TemplateService) Get(id string) (*models.Template, error) {
	for _, t := range s.List() {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: template %q", common.ErrorNotFound, id)
}

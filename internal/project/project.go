package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/SlabNest/internal/model"
)

// FileExtension is the extension used for saved projects.
const FileExtension = ".slabnest"

// SaveProject writes the project to path as JSON.
func SaveProject(path string, p model.Project) error {
	if err := writeJSON(path, p); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// LoadProject reads a project from path. Part shapes are validated on load so
// a damaged file is reported here and not in the middle of a nesting run.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read project: %w", err)
	}
	p := model.NewProject()
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project: %w", err)
	}
	for _, part := range p.Parts {
		if err := part.ValidateShape(); err != nil {
			return model.Project{}, fmt.Errorf("failed to load project: %w", err)
		}
	}
	if p.Parts == nil {
		p.Parts = []model.Part{}
	}
	if p.Slabs == nil {
		p.Slabs = []model.Slab{}
	}
	return p, nil
}

// CurrentResult returns the layout to show for a project: the stored result
// with its placements replaced by the hand-edited ones when there are any.
// ok is false when the project was never nested.
func CurrentResult(p model.Project) (result model.NestingResult, ok bool) {
	if p.Result == nil {
		return model.NestingResult{}, false
	}
	result = *p.Result
	if len(p.Placements) > 0 {
		result.Placements = p.Placements
	}
	return result, true
}

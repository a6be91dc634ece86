package service

import (
	"time"

	"predman/internal/domain"
)

// ComputeStatistics builds a snapshot of the prediction inputs from the
// current project state.
//
// Only unfinished tasks count. The dependency coefficient is the share of
// unfinished tasks waiting on another unfinished task. The critical path is
// the heaviest story-point chain along dependency edges between unfinished
// tasks; an edge that would close a cycle is ignored.
func ComputeStatistics(info *domain.ProjectInfo, teamSize int, tasks []domain.Task, deps []domain.TaskDependency, now time.Time) domain.ProjectStatistics {
	remaining := make(map[string]domain.Task)
	var storyPoints float64
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			continue
		}
		remaining[t.ID] = t
		storyPoints += t.StoryPoints
	}

	edges := make(map[string][]string)
	dependent := make(map[string]bool)
	for _, d := range deps {
		_, okTask := remaining[d.TaskID]
		_, okDep := remaining[d.DependencyID]
		if !okTask || !okDep {
			continue
		}
		edges[d.TaskID] = append(edges[d.TaskID], d.DependencyID)
		dependent[d.TaskID] = true
	}

	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(remaining))
	longest := make(map[string]float64, len(remaining))

	var walk func(id string) float64
	walk = func(id string) float64 {
		switch state[id] {
		case done:
			return longest[id]
		case inProgress:
			return 0
		}
		state[id] = inProgress
		var best float64
		for _, dep := range edges[id] {
			if l := walk(dep); l > best {
				best = l
			}
		}
		state[id] = done
		longest[id] = remaining[id].StoryPoints + best
		return longest[id]
	}

	var critical float64
	for id := range remaining {
		if l := walk(id); l > critical {
			critical = l
		}
	}

	var coefficient float64
	if len(remaining) > 0 {
		coefficient = float64(len(dependent)) / float64(len(remaining))
	}

	return domain.ProjectStatistics{
		ProjectID:               info.ID,
		TeamSize:                teamSize,
		DaysSinceStart:          domain.DaysBetween(info.CreatedAt, now),
		RemainingTasks:          len(remaining),
		RemainingStoryPoints:    storyPoints,
		DependencyCoefficient:   coefficient,
		CriticalPathLength:      critical,
		SumExperience:           info.SumExperience,
		AvailableHours:          info.AvailableHours,
		ExternalRiskProbability: info.ExternalRiskProbability,
		SavedAt:                 domain.NewDate(now),
	}
}

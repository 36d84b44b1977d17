package models

import "time"

// Seed returns the sample tasks shown when nothing has been saved yet.
// Each call returns a fresh collection.
func Seed() Collection {
	return Collection{
		{
			ID:       1,
			Text:     "Learn React",
			Category: CategoryWork,
			DueDate:  NewDate(2023, time.June, 30).Ptr(),
			Priority: PriorityHigh,
			Subtasks: []Subtask{
				{ID: 11, Text: "Study Hooks", Completed: true},
				{ID: 12, Text: "Practice with a project"},
			},
			Tags: []string{"programming", "frontend"},
		},
		{
			ID:        2,
			Text:      "Build a todo app",
			Completed: true,
			Category:  CategoryWork,
			DueDate:   NewDate(2023, time.June, 15).Ptr(),
			Priority:  PriorityMedium,
			Subtasks: []Subtask{
				{ID: 21, Text: "Design UI", Completed: true},
				{ID: 22, Text: "Implement functionality", Completed: true},
			},
			Tags: []string{"project", "react"},
		},
		{
			ID:       3,
			Text:     "Exercise",
			Category: CategoryHealth,
			DueDate:  NewDate(2023, time.June, 20).Ptr(),
			Priority: PriorityLow,
			Subtasks: []Subtask{
				{ID: 31, Text: "30 min cardio"},
				{ID: 32, Text: "15 min stretching"},
			},
			Tags: []string{"fitness", "health"},
		},
	}
}

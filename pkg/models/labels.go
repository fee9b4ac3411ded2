package models

import (
	"fmt"
	"strings"
)

// Labels are the user-facing and persisted names of statuses, priorities and
// categories. Internal code compares the typed constants only; labels are
// produced and parsed here.
//
// Label version 2 (current) uses the English labels below. Version 1 files,
// written by the first release, used Russian labels; they are still accepted
// on input and never produced.

var statusLabels = map[TaskStatus]string{
	StatusNotStarted: "NotStarted",
	StatusInProgress: "InProgress",
	StatusCompleted:  "Completed",
	StatusPostponed:  "Postponed",
}

var legacyStatusLabels = map[string]TaskStatus{
	"Не начата":  StatusNotStarted,
	"В процессе": StatusInProgress,
	"Выполнена":  StatusCompleted,
	"Отложена":   StatusPostponed,
}

var priorityLabels = map[Priority]string{
	PriorityHigh:   "High",
	PriorityMedium: "Medium",
	PriorityLow:    "Low",
}

var legacyPriorityLabels = map[string]Priority{
	"Высокий": PriorityHigh,
	"Средний": PriorityMedium,
	"Низкий":  PriorityLow,
}

var categoryLabels = map[Category]string{
	CategoryWork:     "Work",
	CategoryPersonal: "Personal",
	CategoryHealth:   "Health",
	CategoryLearning: "Learning",
	CategoryHome:     "Home",
	CategoryOther:    "Other",
}

var legacyCategoryLabels = map[string]Category{
	"Работа":   CategoryWork,
	"Личное":   CategoryPersonal,
	"Здоровье": CategoryHealth,
	"Обучение": CategoryLearning,
	"Дом":      CategoryHome,
	"Другое":   CategoryOther,
}

// normalizeLabel folds case and drops separators so that "NotStarted",
// "not_started" and "not started" compare equal.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// Label returns the display and persisted label of s.
func (s TaskStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseStatus resolves a status from its label, its internal code, or a
// version 1 label.
func ParseStatus(label string) (TaskStatus, error) {
	key := normalizeLabel(label)
	for s, l := range statusLabels {
		if key == normalizeLabel(l) {
			return s, nil
		}
	}
	for l, s := range legacyStatusLabels {
		if key == normalizeLabel(l) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", label)
}

// Label returns the display and persisted label of p.
func (p Priority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return string(p)
}

// ParsePriority resolves a priority from its label, its internal code, or a
// version 1 label.
func ParsePriority(label string) (Priority, error) {
	key := normalizeLabel(label)
	for p, l := range priorityLabels {
		if key == normalizeLabel(l) {
			return p, nil
		}
	}
	for l, p := range legacyPriorityLabels {
		if key == normalizeLabel(l) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", label)
}

// Label returns the display and persisted label of c. Categories outside the
// conventional set are their own label.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseCategory maps a label to a Category. Conventional labels (current or
// version 1) resolve to their constant; anything else is kept verbatim after
// trimming. An empty label yields the empty Category.
func ParseCategory(label string) Category {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}
	key := normalizeLabel(trimmed)
	for c, l := range categoryLabels {
		if key == normalizeLabel(l) {
			return c
		}
	}
	for l, c := range legacyCategoryLabels {
		if key == normalizeLabel(l) {
			return c
		}
	}
	return Category(trimmed)
}

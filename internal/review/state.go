package review

import (
	"encoding/json"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
)

const (
	NamespaceHome     = "home"
	NamespaceCalendar = "calendar"
	NamespaceFollowup = "followup"
)

// HomeState maps category key -> item id -> reviewed-at timestamp.
// Timestamps are stored as the ISO-8601 strings the blob schema uses;
// parsing happens at evaluation time so one corrupt entry never takes
// the whole namespace down.
type HomeState map[string]map[string]string

// CalendarState holds review marks for calendar events.
type CalendarState struct {
	Reviews map[string]string `json:"reviews"`
}

// FollowupState tracks email threads the user wants to come back to.
// Reviews are cyclical like everywhere else; Resolved is terminal and
// removes the thread from consideration for good.
type FollowupState struct {
	Emails   map[string]model.Item `json:"emails"`
	Reviews  map[string]string     `json:"reviews"`
	Resolved map[string]string     `json:"resolved"`
}

func EmptyHome() HomeState {
	return HomeState{}
}

func EmptyCalendar() CalendarState {
	return CalendarState{Reviews: map[string]string{}}
}

func EmptyFollowup() FollowupState {
	return FollowupState{
		Emails:   map[string]model.Item{},
		Reviews:  map[string]string{},
		Resolved: map[string]string{},
	}
}

func decodeHome(blob []byte) (HomeState, error) {
	if len(blob) == 0 {
		return EmptyHome(), nil
	}
	var s HomeState
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, err
	}
	if s == nil {
		s = EmptyHome()
	}
	for cat, entries := range s {
		if entries == nil {
			s[cat] = map[string]string{}
		}
	}
	return s, nil
}

func decodeCalendar(blob []byte) (CalendarState, error) {
	if len(blob) == 0 {
		return EmptyCalendar(), nil
	}
	var s CalendarState
	if err := json.Unmarshal(blob, &s); err != nil {
		return CalendarState{}, err
	}
	if s.Reviews == nil {
		s.Reviews = map[string]string{}
	}
	return s, nil
}

func decodeFollowup(blob []byte) (FollowupState, error) {
	if len(blob) == 0 {
		return EmptyFollowup(), nil
	}
	var s FollowupState
	if err := json.Unmarshal(blob, &s); err != nil {
		return FollowupState{}, err
	}
	if s.Emails == nil {
		s.Emails = map[string]model.Item{}
	}
	if s.Reviews == nil {
		s.Reviews = map[string]string{}
	}
	if s.Resolved == nil {
		s.Resolved = map[string]string{}
	}
	return s, nil
}

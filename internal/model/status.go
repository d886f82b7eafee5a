package model

import "fmt"

// StatusTargetVersion is the status list target for versions.
const StatusTargetVersion = "version"

// Status represents one named workflow state with its display colors.
type Status struct {
	Code string
	Name string
	// FgColor and BgColor are display colors in "#rrggbb" form.
	FgColor string
	BgColor string
	// Order is the position of the status inside its status list.
	Order int
}

// Validate validates the status model.
func (s Status) Validate() error {
	if s.Code == "" {
		return fmt.Errorf("status code is required: %w", ErrNotValid)
	}
	if s.Name == "" {
		return fmt.Errorf("status name is required: %w", ErrNotValid)
	}
	return nil
}

// StatusList is the ordered status vocabulary for one target entity type.
type StatusList struct {
	Target   string
	Statuses []Status
}

// ByCode returns the status with the given code, or nil when absent.
func (l StatusList) ByCode(code string) *Status {
	for i := range l.Statuses {
		if l.Statuses[i].Code == code {
			return &l.Statuses[i]
		}
	}
	return nil
}

// ByName returns the first status matching name exactly, or nil when absent.
func (l StatusList) ByName(name string) *Status {
	for i := range l.Statuses {
		if l.Statuses[i].Name == name {
			return &l.Statuses[i]
		}
	}
	return nil
}

package model

import "fmt"

// ValidationError reports malformed or inconsistent input data. It is raised while the
// domain is being built and no partial domain is ever returned along with it.
type ValidationError struct {
	Entity string
	Id     string
	Reason string
}

func (err *ValidationError) Error() string {
	if err.Entity == "" {
		return fmt.Sprintf("invalid input: %v", err.Reason)
	}
	return fmt.Sprintf("invalid %v \"%v\": %v", err.Entity, err.Id, err.Reason)
}

func invalid(entity, id, format string, args ...any) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Id:     id,
		Reason: fmt.Sprintf(format, args...),
	}
}

package settings

import (
	"fmt"

	"github.com/callummance/caretaker/guildmodels"
)

//NoSuchSettingError is returned when a setting name does not exist for a module
type NoSuchSettingError struct {
	Name string
}

func (e *NoSuchSettingError) Error() string {
	return fmt.Sprintf("No such setting: %v", e.Name)
}

//InvalidValueError is returned when a value could not be parsed as the setting's type
type InvalidValueError struct {
	Name  string
	Value string
	Type  string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("Invalid value for %v: `%v`, expected a %v", e.Name, e.Value, e.Type)
}

//InvalidFieldError is returned when stored settings rows contain a setting the module does not have
type InvalidFieldError struct {
	Kind guildmodels.ModuleKind
	Name string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field `%v` in stored settings for module %v", e.Name, e.Kind)
}

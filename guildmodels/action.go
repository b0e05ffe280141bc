package guildmodels

import "fmt"

//ActionKind identifies the remedial side effect performed when a module matches a message
type ActionKind string

const (
	//RemoveMessage deletes the offending message
	RemoveMessage ActionKind = "remove-message"
	//Notify posts a templated notification, either in the offending channel or in a fixed one
	Notify ActionKind = "notify"
)

//ParseActionKind converts a kebab-case action name into an ActionKind
func ParseActionKind(name string) (ActionKind, error) {
	switch ActionKind(name) {
	case RemoveMessage, Notify:
		return ActionKind(name), nil
	default:
		return "", fmt.Errorf("unknown action `%v`", name)
	}
}

//FriendlyName returns a short human-readable name for an action kind
func (kind ActionKind) FriendlyName() string {
	switch kind {
	case RemoveMessage:
		return "Remove the user's message"
	case Notify:
		return "Notify about the message"
	default:
		return string(kind)
	}
}

//Action is one configured remediation for a module. ID is an opaque, backend specific identifier; actions are
//addressed by their position in the insertion-ordered list everywhere else.
type Action struct {
	ID      string
	Kind    ActionKind
	Channel string
	Message string
}

//RemoveMessageAction builds a remove-message action
func RemoveMessageAction() Action {
	return Action{Kind: RemoveMessage}
}

//NotifyAction builds a notify action. An empty channel means the channel the offending message was posted in.
func NotifyAction(channel, message string) Action {
	return Action{
		Kind:    Notify,
		Channel: channel,
		Message: message,
	}
}

//FriendlyName returns a short human-readable name for the action
func (a Action) FriendlyName() string {
	return a.Kind.FriendlyName()
}

//Description renders the action's parameters for listing to an operator
func (a Action) Description() string {
	switch a.Kind {
	case RemoveMessage:
		return "Remove the message, nothing special about it"
	case Notify:
		if a.Channel == "" {
			return fmt.Sprintf("In the same channel with `%v`", a.Message)
		}
		return fmt.Sprintf("In <#%v> with `%v`", a.Channel, a.Message)
	default:
		return fmt.Sprintf("Unknown action `%v`", a.Kind)
	}
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/callummance/caretaker/guildmodels"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	rethink "gopkg.in/gorethink/gorethink.v3"
)

const actionsTable string = "actions"

//actionDoc is a stored action. RethinkDB has no auto-incrementing keys, so insertion order is kept in Created.
type actionDoc struct {
	ID      string `gorethink:"id"`
	Guild   string `gorethink:"guild"`
	Module  string `gorethink:"module"`
	Action  string `gorethink:"action"`
	Channel string `gorethink:"in_channel,omitempty"`
	Message string `gorethink:"message,omitempty"`
	Created int64  `gorethink:"created"`
}

//GetActions returns the actions of a module in the order they were added
func (db *Connection) GetActions(_ context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.Action, error) {
	filter := map[string]interface{}{
		"guild":  gid,
		"module": string(kind),
	}
	res, err := rethink.Table(actionsTable).Filter(filter).OrderBy(rethink.Asc("created")).Run(db.session)
	if err != nil {
		logrus.Warnf("Failed to query actions of module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	defer res.Close()
	var docs []actionDoc
	if err := res.All(&docs); err != nil {
		logrus.Warnf("Failed to read actions of module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}

	actions := make([]guildmodels.Action, 0, len(docs))
	for _, doc := range docs {
		actionKind, err := guildmodels.ParseActionKind(doc.Action)
		if err != nil {
			return nil, fmt.Errorf("stored action %v is invalid: %w", doc.ID, err)
		}
		if actionKind == guildmodels.Notify && doc.Message == "" {
			return nil, fmt.Errorf("stored notify action %v is missing its message", doc.ID)
		}
		actions = append(actions, guildmodels.Action{
			ID:      doc.ID,
			Kind:    actionKind,
			Channel: doc.Channel,
			Message: doc.Message,
		})
	}
	return actions, nil
}

//AddAction appends an action to a module
func (db *Connection) AddAction(_ context.Context, gid string, kind guildmodels.ModuleKind, action guildmodels.Action) error {
	doc := actionDoc{
		ID:      uuid.NewString(),
		Guild:   gid,
		Module:  string(kind),
		Action:  string(action.Kind),
		Channel: action.Channel,
		Message: action.Message,
		Created: time.Now().UnixNano(),
	}
	resp, err := rethink.Table(actionsTable).Insert(doc).RunWrite(db.session)
	if err == nil {
		err = writeError(resp)
	}
	if err != nil {
		logrus.Warnf("Failed to add %v action to module %v for guild %v: %v", action.Kind, kind, gid, err)
		return err
	}
	return nil
}

//RemoveAction deletes the action with the given ID from a module
func (db *Connection) RemoveAction(_ context.Context, gid string, kind guildmodels.ModuleKind, actionID string) error {
	filter := map[string]interface{}{
		"id":     actionID,
		"guild":  gid,
		"module": string(kind),
	}
	resp, err := rethink.Table(actionsTable).Filter(filter).Delete().RunWrite(db.session)
	if err == nil {
		err = writeError(resp)
	}
	if err != nil {
		logrus.Warnf("Failed to remove action %v from module %v for guild %v: %v", actionID, kind, gid, err)
		return err
	} else if resp.Deleted == 0 {
		return fmt.Errorf("no action with id %v in module %v", actionID, kind)
	}
	return nil
}

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/callummance/caretaker/guildmodels"
	"github.com/sirupsen/logrus"
)

//GetActions returns the actions of a module in the order they were added
func (s *Store) GetActions(ctx context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.Action, error) {
	rows, err := s.query(ctx,
		`SELECT id, action, in_channel, message FROM actions WHERE guild = $1 AND module = $2 ORDER BY id`,
		gid, string(kind))
	if err != nil {
		logrus.Warnf("Failed to query actions of module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	defer rows.Close()

	var res []guildmodels.Action
	for rows.Next() {
		var id int64
		var actionKind string
		var channel, message sql.NullString
		if err := rows.Scan(&id, &actionKind, &channel, &message); err != nil {
			return nil, err
		}
		parsed, err := guildmodels.ParseActionKind(actionKind)
		if err != nil {
			return nil, fmt.Errorf("stored action %d is invalid: %w", id, err)
		}
		if parsed == guildmodels.Notify && !message.Valid {
			return nil, fmt.Errorf("stored notify action %d is missing its message", id)
		}
		res = append(res, guildmodels.Action{
			ID:      strconv.FormatInt(id, 10),
			Kind:    parsed,
			Channel: channel.String,
			Message: message.String,
		})
	}
	return res, rows.Err()
}

//AddAction appends an action to a module
func (s *Store) AddAction(ctx context.Context, gid string, kind guildmodels.ModuleKind, action guildmodels.Action) error {
	_, err := s.exec(ctx,
		`INSERT INTO actions (guild, module, action, in_channel, message) VALUES ($1, $2, $3, $4, $5)`,
		gid, string(kind), string(action.Kind), nullable(action.Channel), nullable(action.Message))
	if err != nil {
		logrus.Warnf("Failed to add %v action to module %v for guild %v: %v", action.Kind, kind, gid, err)
		return err
	}
	return nil
}

//RemoveAction deletes the action with the given ID from a module
func (s *Store) RemoveAction(ctx context.Context, gid string, kind guildmodels.ModuleKind, actionID string) error {
	id, err := strconv.ParseInt(actionID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid action id `%v`: %w", actionID, err)
	}
	res, err := s.exec(ctx,
		`DELETE FROM actions WHERE id = $1 AND guild = $2 AND module = $3`,
		id, gid, string(kind))
	if err != nil {
		logrus.Warnf("Failed to remove action %v from module %v for guild %v: %v", actionID, kind, gid, err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no action with id %v in module %v", actionID, kind)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

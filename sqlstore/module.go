package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/callummance/caretaker/guildmodels"
	"github.com/sirupsen/logrus"
)

//AllModules returns every stored module across all guilds
func (s *Store) AllModules(ctx context.Context) ([]guildmodels.Module, error) {
	rows, err := s.query(ctx, `SELECT guild, module, enabled FROM modules`)
	if err != nil {
		logrus.Warnf("Failed to query modules: %v", err)
		return nil, err
	}
	defer rows.Close()

	var res []guildmodels.Module
	for rows.Next() {
		var m guildmodels.Module
		var kind string
		if err := rows.Scan(&m.GuildID, &kind, &m.Enabled); err != nil {
			return nil, err
		}
		if m.Kind, err = guildmodels.ParseModuleKind(kind); err != nil {
			logrus.Warnf("Skipping stored module for guild %v: %v", m.GuildID, err)
			continue
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

//GetModule returns a stored module, or nil if it was never configured
func (s *Store) GetModule(ctx context.Context, gid string, kind guildmodels.ModuleKind) (*guildmodels.Module, error) {
	m := guildmodels.Module{GuildID: gid, Kind: kind}
	err := s.queryRow(ctx,
		`SELECT enabled FROM modules WHERE guild = $1 AND module = $2`,
		gid, string(kind)).Scan(&m.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		logrus.Warnf("Failed to query module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	return &m, nil
}

//SetModuleEnabled inserts or updates the enabled flag of a module
func (s *Store) SetModuleEnabled(ctx context.Context, gid string, kind guildmodels.ModuleKind, enabled bool) error {
	_, err := s.exec(ctx, `
INSERT INTO modules (guild, module, enabled) VALUES ($1, $2, $3)
ON CONFLICT (guild, module) DO UPDATE SET enabled = excluded.enabled`,
		gid, string(kind), enabled)
	if err != nil {
		logrus.Warnf("Failed to set module %v enabled=%v for guild %v: %v", kind, enabled, gid, err)
		return err
	}
	return nil
}

//GetSettingRows returns the stored settings of a module
func (s *Store) GetSettingRows(ctx context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.SettingRow, error) {
	rows, err := s.query(ctx,
		`SELECT setting, value FROM module_settings WHERE guild = $1 AND module = $2 ORDER BY setting`,
		gid, string(kind))
	if err != nil {
		logrus.Warnf("Failed to query settings of module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	defer rows.Close()

	var res []guildmodels.SettingRow
	for rows.Next() {
		var row guildmodels.SettingRow
		if err := rows.Scan(&row.Name, &row.Value); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

//SetSettingRows upserts every given setting of a module in a single transaction
func (s *Store) SetSettingRows(ctx context.Context, gid string, kind guildmodels.ModuleKind, settingRows []guildmodels.SettingRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, row := range settingRows {
		_, err := tx.ExecContext(ctx, s.rebind(`
INSERT INTO module_settings (guild, module, setting, value) VALUES ($1, $2, $3, $4)
ON CONFLICT (guild, module, setting) DO UPDATE SET value = excluded.value`),
			gid, string(kind), row.Name, row.Value)
		if err != nil {
			logrus.Warnf("Failed to store setting %v of module %v for guild %v: %v", row.Name, kind, gid, err)
			return fmt.Errorf("failed to store setting %v: %w", row.Name, err)
		}
	}
	return tx.Commit()
}

package db

import (
	"context"
	"fmt"

	"github.com/callummance/caretaker/guildmodels"
	"github.com/sirupsen/logrus"
	rethink "gopkg.in/gorethink/gorethink.v3"
)

const modulesTable string = "modules"
const settingsTable string = "module_settings"

//settingDoc is one stored setting. The guild and module are kept outside the compound id as well so they can be
//filtered on.
type settingDoc struct {
	ID     []string `gorethink:"id"`
	Guild  string   `gorethink:"guild"`
	Module string   `gorethink:"module"`
	Name   string   `gorethink:"name"`
	Value  string   `gorethink:"value"`
}

//AllModules returns every stored module across all guilds
func (db *Connection) AllModules(_ context.Context) ([]guildmodels.Module, error) {
	res, err := rethink.Table(modulesTable).Run(db.session)
	if err != nil {
		logrus.Warnf("Failed to query modules: %v", err)
		return nil, err
	}
	defer res.Close()
	var modules []guildmodels.Module
	if err := res.All(&modules); err != nil {
		logrus.Warnf("Failed to read modules: %v", err)
		return nil, err
	}
	valid := modules[:0]
	for _, m := range modules {
		if !m.Kind.Valid() {
			logrus.Warnf("Skipping stored module %v for guild %v", m.Kind, m.GuildID)
			continue
		}
		valid = append(valid, m)
	}
	return valid, nil
}

//GetModule returns a stored module, or nil if it was never configured
func (db *Connection) GetModule(_ context.Context, gid string, kind guildmodels.ModuleKind) (*guildmodels.Module, error) {
	res, err := rethink.Table(modulesTable).Get([]string{gid, string(kind)}).Run(db.session)
	if err != nil {
		logrus.Warnf("Failed to query module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	defer res.Close()
	if res.IsNil() {
		return nil, nil
	}
	var m guildmodels.Module
	if err := res.One(&m); err != nil {
		logrus.Warnf("Failed to read module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	return &m, nil
}

//SetModuleEnabled inserts or updates the enabled flag of a module
func (db *Connection) SetModuleEnabled(_ context.Context, gid string, kind guildmodels.ModuleKind, enabled bool) error {
	m := guildmodels.Module{GuildID: gid, Kind: kind, Enabled: enabled}
	resp, err := rethink.Table(modulesTable).Insert(m, rethink.InsertOpts{Conflict: "update"}).RunWrite(db.session)
	if err == nil {
		err = writeError(resp)
	}
	if err != nil {
		logrus.Warnf("Failed to set module %v enabled=%v for guild %v: %v", kind, enabled, gid, err)
		return err
	}
	return nil
}

//GetSettingRows returns the stored settings of a module
func (db *Connection) GetSettingRows(_ context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.SettingRow, error) {
	filter := map[string]interface{}{
		"guild":  gid,
		"module": string(kind),
	}
	res, err := rethink.Table(settingsTable).Filter(filter).OrderBy(rethink.Asc("name")).Run(db.session)
	if err != nil {
		logrus.Warnf("Failed to query settings of module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	defer res.Close()
	var docs []settingDoc
	if err := res.All(&docs); err != nil {
		logrus.Warnf("Failed to read settings of module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	rows := make([]guildmodels.SettingRow, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, guildmodels.SettingRow{Name: doc.Name, Value: doc.Value})
	}
	return rows, nil
}

//SetSettingRows upserts every given setting of a module
func (db *Connection) SetSettingRows(_ context.Context, gid string, kind guildmodels.ModuleKind, rows []guildmodels.SettingRow) error {
	if len(rows) == 0 {
		return nil
	}
	docs := make([]settingDoc, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, settingDoc{
			ID:     []string{gid, string(kind), row.Name},
			Guild:  gid,
			Module: string(kind),
			Name:   row.Name,
			Value:  row.Value,
		})
	}
	resp, err := rethink.Table(settingsTable).Insert(docs, rethink.InsertOpts{Conflict: "update"}).RunWrite(db.session)
	if err == nil {
		err = writeError(resp)
	}
	if err != nil {
		logrus.Warnf("Failed to store settings of module %v for guild %v: %v", kind, gid, err)
		return fmt.Errorf("failed to store settings: %w", err)
	}
	return nil
}

package db

import (
	"context"
	"fmt"

	"github.com/callummance/caretaker/guildmodels"
	"github.com/sirupsen/logrus"
	rethink "gopkg.in/gorethink/gorethink.v3"
)

const exclusionsTable string = "module_exclusions"

type exclusionDoc struct {
	ID     []string `gorethink:"id"`
	Guild  string   `gorethink:"guild"`
	Module string   `gorethink:"module"`
	Kind   string   `gorethink:"kind"`
	Target string   `gorethink:"target"`
}

func exclusionID(gid string, kind guildmodels.ModuleKind, excl guildmodels.Exclusion) []string {
	return []string{gid, string(kind), string(excl.Kind), excl.ID}
}

//GetExclusions returns the exclusions stored for a module
func (db *Connection) GetExclusions(_ context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.Exclusion, error) {
	filter := map[string]interface{}{
		"guild":  gid,
		"module": string(kind),
	}
	res, err := rethink.Table(exclusionsTable).Filter(filter).Run(db.session)
	if err != nil {
		logrus.Warnf("Failed to query exclusions of module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	defer res.Close()
	var docs []exclusionDoc
	if err := res.All(&docs); err != nil {
		logrus.Warnf("Failed to read exclusions of module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	excls := make([]guildmodels.Exclusion, 0, len(docs))
	for _, doc := range docs {
		exclKind, err := guildmodels.ParseExclusionKind(doc.Kind)
		if err != nil {
			logrus.Warnf("Skipping stored exclusion %v of module %v for guild %v: %v", doc.Target, kind, gid, err)
			continue
		}
		excls = append(excls, guildmodels.Exclusion{Kind: exclKind, ID: doc.Target})
	}
	return excls, nil
}

//AddExclusion stores an exclusion for a module. Adding an exclusion twice fails.
func (db *Connection) AddExclusion(_ context.Context, gid string, kind guildmodels.ModuleKind, excl guildmodels.Exclusion) error {
	doc := exclusionDoc{
		ID:     exclusionID(gid, kind, excl),
		Guild:  gid,
		Module: string(kind),
		Kind:   string(excl.Kind),
		Target: excl.ID,
	}
	resp, err := rethink.Table(exclusionsTable).Insert(doc).RunWrite(db.session)
	if err == nil {
		err = writeError(resp)
	}
	if err != nil {
		logrus.Warnf("Failed to add exclusion %v to module %v for guild %v: %v", excl, kind, gid, err)
		return err
	}
	return nil
}

//RemoveExclusion deletes an exclusion from a module
func (db *Connection) RemoveExclusion(_ context.Context, gid string, kind guildmodels.ModuleKind, excl guildmodels.Exclusion) error {
	resp, err := rethink.Table(exclusionsTable).Get(exclusionID(gid, kind, excl)).Delete().RunWrite(db.session)
	if err == nil {
		err = writeError(resp)
	}
	if err != nil {
		logrus.Warnf("Failed to remove exclusion %v from module %v for guild %v: %v", excl, kind, gid, err)
		return err
	} else if resp.Deleted == 0 {
		return fmt.Errorf("no exclusion %v in module %v", excl, kind)
	}
	return nil
}

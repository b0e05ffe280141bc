package sqlstore

import (
	"context"

	"github.com/callummance/caretaker/guildmodels"
	"github.com/sirupsen/logrus"
)

//GetExclusions returns the exclusions stored for a module
func (s *Store) GetExclusions(ctx context.Context, gid string, kind guildmodels.ModuleKind) ([]guildmodels.Exclusion, error) {
	rows, err := s.query(ctx,
		`SELECT kind, id FROM module_exclusions WHERE guild = $1 AND module = $2`,
		gid, string(kind))
	if err != nil {
		logrus.Warnf("Failed to query exclusions of module %v for guild %v: %v", kind, gid, err)
		return nil, err
	}
	defer rows.Close()

	var res []guildmodels.Exclusion
	for rows.Next() {
		var exclKind, id string
		if err := rows.Scan(&exclKind, &id); err != nil {
			return nil, err
		}
		parsed, err := guildmodels.ParseExclusionKind(exclKind)
		if err != nil {
			logrus.Warnf("Skipping stored exclusion %v of module %v for guild %v: %v", id, kind, gid, err)
			continue
		}
		res = append(res, guildmodels.Exclusion{Kind: parsed, ID: id})
	}
	return res, rows.Err()
}

//AddExclusion stores an exclusion for a module
func (s *Store) AddExclusion(ctx context.Context, gid string, kind guildmodels.ModuleKind, excl guildmodels.Exclusion) error {
	_, err := s.exec(ctx,
		`INSERT INTO module_exclusions (guild, module, kind, id) VALUES ($1, $2, $3, $4)`,
		gid, string(kind), string(excl.Kind), excl.ID)
	if err != nil {
		logrus.Warnf("Failed to add exclusion %v to module %v for guild %v: %v", excl, kind, gid, err)
		return err
	}
	return nil
}

//RemoveExclusion deletes an exclusion from a module
func (s *Store) RemoveExclusion(ctx context.Context, gid string, kind guildmodels.ModuleKind, excl guildmodels.Exclusion) error {
	_, err := s.exec(ctx,
		`DELETE FROM module_exclusions WHERE guild = $1 AND module = $2 AND kind = $3 AND id = $4`,
		gid, string(kind), string(excl.Kind), excl.ID)
	if err != nil {
		logrus.Warnf("Failed to remove exclusion %v from module %v for guild %v: %v", excl, kind, gid, err)
		return err
	}
	return nil
}

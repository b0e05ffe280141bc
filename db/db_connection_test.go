package db

import (
	"testing"

	"github.com/callummance/caretaker/module"
)

var _ module.Repository = (*Connection)(nil)

func TestInitRejectsInvalidURL(t *testing.T) {
	for _, u := range []string{"postgres://localhost/db", "rethinkdb://", "::not a url"} {
		if _, err := Init(u, 0, 0); err == nil {
			t.Errorf("Init(%q) succeeded", u)
		}
	}
}

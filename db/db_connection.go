//Package db is the RethinkDB backed module.Repository
package db

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	rethink "gopkg.in/gorethink/gorethink.v3"
)

const dbNameDefault string = "caretaker"
const baseDbPoolConnections int = 2
const maxDbPoolConnections int = 20

var tables = map[string]string{
	modulesTable:    "id",
	settingsTable:   "id",
	exclusionsTable: "id",
	actionsTable:    "id",
}

//Connection contains a handle to the database. The ctx arguments of its methods are accepted for interface
//compatibility only; queries are bounded by the session's own timeouts.
type Connection struct {
	session *rethink.Session
}

//Init creates a new connection pool for the database at dbURL, of the form rethinkdb://[user:pass@]host:port/dbname.
//A zero pool size falls back to the defaults.
func Init(dbURL string, initialConns, maxConns int) (*Connection, error) {
	rethink.SetVerbose(true)
	u, err := url.Parse(dbURL)
	if err != nil || u.Scheme != "rethinkdb" || u.Host == "" {
		logrus.Errorf("`%v` is not a valid rethinkdb URL.", dbURL)
		return nil, fmt.Errorf("`%v` is not a valid rethinkdb url", dbURL)
	}
	dbName := strings.Trim(u.Path, "/")
	if dbName == "" {
		logrus.Warnf("DB name was not provided, falling back to default `%v`", dbNameDefault)
		dbName = dbNameDefault
	}
	if initialConns == 0 {
		initialConns = baseDbPoolConnections
	}
	if maxConns == 0 {
		maxConns = maxDbPoolConnections
	}

	opts := rethink.ConnectOpts{
		Address:    u.Host,
		Database:   dbName,
		InitialCap: initialConns,
		MaxOpen:    maxConns,
	}
	if u.User != nil {
		opts.Username = u.User.Username()
		opts.Password, _ = u.User.Password()
	}
	//Create new connection pool to db
	session, err := rethink.Connect(opts)
	if err != nil {
		logrus.Errorf("Failed to create connection to rethinkdb instance at address %v because %v.", u.Host, err)
		return nil, fmt.Errorf("failed to create connection to rethinkdb instance at address %v because %v", u.Host, err)
	}

	res := Connection{
		session: session,
	}

	//Ensure database and required tables exist, and wait for it all to be ready
	res.CreateDatabase(dbName)
	res.CreateTables()

	return &res, nil
}

//Close cleanly terminates the database connection
func (db *Connection) Close() error {
	logrus.Info("Terminating DB connection...")
	return db.session.Close()
}

//CreateTables ensures all tables needed exist. Tables which already exist are left alone.
func (db *Connection) CreateTables() {
	for table, primaryKey := range tables {
		_, err := rethink.TableCreate(table, rethink.TableCreateOpts{
			PrimaryKey: primaryKey,
		}).RunWrite(db.session)
		if err != nil {
			logrus.Warnf("Failed to create %v table due to error %v", table, err)
		}
	}
	//Wait for all tables
	for table := range tables {
		if err := rethink.Table(table).Wait().Exec(db.session); err != nil {
			logrus.Warnf("Failed waiting for %v table: %v", table, err)
		}
	}
}

//CreateDatabase ensures the caretaker database exists
func (db *Connection) CreateDatabase(dbName string) {
	_, err := rethink.DBCreate(dbName).RunWrite(db.session)
	if err != nil {
		logrus.Warnf("Failed to create %v DB due to error %v", dbName, err)
	}
	if err := rethink.DB(dbName).Wait().Exec(db.session); err != nil {
		logrus.Warnf("Failed waiting for %v DB: %v", dbName, err)
	}
}

func writeError(resp rethink.WriteResponse) error {
	if resp.Errors > 0 {
		return fmt.Errorf("%v", resp.FirstError)
	}
	return nil
}

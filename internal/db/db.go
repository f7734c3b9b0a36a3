package db

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/curaious/taskdesk/internal/config"
)

// DSN builds the Postgres connection string from conf.
func DSN(conf *config.Config) string {
	str := fmt.Sprintf("postgresql://%v:%v@%v:%v/%v", conf.DB_USERNAME, conf.DB_PASSWORD, conf.DB_HOST, conf.DB_PORT, conf.DB_NAME)
	if conf.DISABLE_TLS == "true" {
		str = str + "?sslmode=disable"
	}
	return str
}

func NewConn(conf *config.Config) *sqlx.DB {
	slog.Info("Connecting to database", slog.String("host", conf.DB_HOST), slog.String("database", conf.DB_NAME))

	db, err := sqlx.Open("postgres", DSN(conf))
	if err != nil {
		log.Fatal(err)
	}
	err = db.Ping()
	if err != nil {
		log.Fatalln("Unable to connect to database", err.Error())
	}

	slog.Info("Connected to database")

	return db
}

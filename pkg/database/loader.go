package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"delupo-stats/pkg/logging"
)

const orderEventTypeID = 6 // "Commande"

// DefaultTable est la table d'événements clients lue par défaut.
const DefaultTable = "CustomerEventData"

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open DSN mariadb:// ou mysql:// → format MySQL driver
func Open(dsn string) (*sql.DB, string, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, mysqlDSN, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("dsn incomplet (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// OrderEvent : une commande et la date de première commande de son client.
type OrderEvent struct {
	CustomerID   uint64
	FirstOrderDT time.Time
	EventDate    time.Time
}

// LoadOrderEvents lit les commandes de [from, to) avec la première commande (toutes dates) du client.
func LoadOrderEvents(ctx context.Context, db *sql.DB, tableName string, from, to time.Time) ([]OrderEvent, error) {
	if !tableNameRe.MatchString(tableName) {
		return nil, fmt.Errorf("table invalide")
	}

	// Always work in UTC and format as MySQL DATETIME strings
	const layout = "2006-01-02 15:04:05"
	pStart := from.UTC().Format(layout)
	pEnd := to.UTC().Format(layout)

	// 1) première commande de chaque client
	// 2) commandes de la période, jointes à cette première commande
	q := fmt.Sprintf(`
		SELECT ced.CustomerID, f.first_order, ced.EventDate
		FROM %s ced
		JOIN (
			SELECT CustomerID, MIN(EventDate) AS first_order
			FROM %s
			WHERE EventTypeID = ?
			GROUP BY CustomerID
		) f ON f.CustomerID = ced.CustomerID
		WHERE ced.EventTypeID = ?
		  AND ced.EventDate >= ? AND ced.EventDate < ?
	`, tableName, tableName)

	log := logging.With("database")
	log.Debug().Str("from", pStart).Str("to", pEnd).Msg("bornes UTC")

	rows, err := db.QueryContext(ctx, q, orderEventTypeID, orderEventTypeID, pStart, pEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []OrderEvent
	for rows.Next() {
		var ev OrderEvent
		if err := rows.Scan(&ev.CustomerID, &ev.FirstOrderDT, &ev.EventDate); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug().Int("events", len(events)).Msg("commandes lues")
	return events, nil
}

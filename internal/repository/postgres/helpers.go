package postgres

import "github.com/jmoiron/sqlx"

// sqlxIn expands a query's "IN (?)" placeholder for a slice argument and
// rebinds it to postgres's $N placeholder style.
func sqlxIn(query string, args ...interface{}) (string, []interface{}, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, q), a, nil
}

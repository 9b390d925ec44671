package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Dialects lists the supported dialects.
var Dialects = []string{MySQL, Postgres, SQLite}

// Normalize returns the dialect name for the given name or alias.
func Normalize(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case MySQL, "mariadb":
		return MySQL, nil
	case Postgres, "postgresql", "pg", "pgx":
		return Postgres, nil
	case SQLite, "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("dialect: unsupported dialect %q", name)
	}
}

// Placeholder returns the i-th (1-based) bind parameter of the dialect.
func Placeholder(dialect string, i int) string {
	if dialect == Postgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Placeholders returns n comma separated bind parameters starting at 1.
func Placeholders(dialect string, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = Placeholder(dialect, i+1)
	}
	return strings.Join(ps, ", ")
}

// Quote quotes an identifier for the dialect.
func Quote(dialect, ident string) string {
	if dialect == MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

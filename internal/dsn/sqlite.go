package dsn

import (
	"net/url"
	"strings"
)

// SQLiteResolver handles local history files.
type SQLiteResolver struct{}

func NewSQLiteResolver() *SQLiteResolver { return &SQLiteResolver{} }

// Parse accepts "sqlite:///abs/path.db", "sqlite://rel.db", "file:path.db?..." ,
// ":memory:" and plain paths. Query parameters are kept as pragmas.
func (r *SQLiteResolver) Parse(dsn string) (*DSNInfo, error) {
	raw := strings.TrimSpace(dsn)
	if raw == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a file path for the history database")
	}
	info := &DSNInfo{Type: DBTypeSQLite, Params: map[string]string{}, Original: dsn}

	path := raw
	switch lower := strings.ToLower(raw); {
	case strings.HasPrefix(lower, "sqlite://"):
		path = raw[len("sqlite://"):]
	case strings.HasPrefix(lower, "file:"):
		path = raw[len("file:"):]
	}
	if i := strings.Index(path, "?"); i >= 0 {
		q, err := url.ParseQuery(path[i+1:])
		if err != nil {
			return nil, NewParseError(dsn, "malformed query parameters", "use key=value pairs joined by &")
		}
		for k, v := range q {
			if len(v) > 0 {
				info.Params[k] = v[0]
			}
		}
		path = path[:i]
	}
	if path == "" {
		return nil, NewParseError(dsn, "missing database path", "e.g. sqlite:///home/me/.local/state/garagedoor/history.db")
	}
	info.Database = path
	return info, nil
}

// Normalize returns the file path, with parameters in modernc's file: form when any
// are present.
func (r *SQLiteResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	if len(info.Params) == 0 {
		return info.Database, nil
	}
	q := url.Values{}
	for k, v := range info.Params {
		q.Set(k, v)
	}
	return "file:" + info.Database + "?" + q.Encode(), nil
}

func (r *SQLiteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}

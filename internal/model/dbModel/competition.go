package dbModel

import "database/sql"

type Competition struct {
	CompetitionID int64        `db:"competition_id"`
	Name          string       `db:"name"`
	Slug          string       `db:"slug"`
	EntryDeadline sql.NullTime `db:"entry_deadline"`
}

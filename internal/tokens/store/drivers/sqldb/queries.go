package sqldb

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
)

// queries are rendered once per store from the configured column names.
type queries struct {
	dialect Dialect
	cols    store.Columns

	selectCols    string
	listAccount   string
	countAccount  string
	insert        string
	update        string
	deleteAccount string
	listAfter     string
}

func newQueries(d Dialect, c store.Columns) queries {
	p := d.Placeholder
	sel := strings.Join([]string{c.ID, c.Account, c.Token, c.Algorithm, c.Decoder}, ", ")

	return queries{
		dialect:    d,
		cols:       c,
		selectCols: sel,
		listAccount: fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY %s",
			sel, c.Table, c.Account, p(1), c.ID),
		countAccount: fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = %s",
			c.Table, c.Account, p(1)),
		insert: fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (%s, %s, %s, %s) RETURNING %s",
			c.Table, c.Account, c.Token, c.Algorithm, c.Decoder, p(1), p(2), p(3), p(4), c.ID),
		update: fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
			c.Table, c.Token, p(1), c.ID, p(2)),
		deleteAccount: fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
			c.Table, c.Account, p(1)),
		listAfter: fmt.Sprintf("SELECT %s FROM %s WHERE %s > %s ORDER BY %s LIMIT %s",
			sel, c.Table, c.ID, p(1), c.ID, p(2)),
	}
}

// deleteIDs renders a DELETE for n ids.
func (q queries) deleteIDs(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = q.dialect.Placeholder(i + 1)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		q.cols.Table, q.cols.ID, strings.Join(marks, ", "))
}

// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"

	"github.com/pkg/errors"
)

// statements holds the fixed statements of the writer, prepared once at open.
type statements struct {
	insertEvent    *sql.Stmt
	insertTransfer *sql.Stmt
	maxEventSeq    *sql.Stmt
	maxTransferSeq *sql.Stmt
}

func prepareStatements(db *sql.DB) (*statements, error) {
	var (
		s    statements
		err  error
		list = []struct {
			dst   **sql.Stmt
			query string
		}{
			{&s.insertEvent, insertEvent},
			{&s.insertTransfer, insertTransfer},
			{&s.maxEventSeq, maxEventSeq},
			{&s.maxTransferSeq, maxTransferSeq},
		}
	)
	for _, item := range list {
		if *item.dst, err = db.Prepare(item.query); err != nil {
			s.close()
			return nil, errors.Wrapf(err, "prepare %q", item.query)
		}
	}
	return &s, nil
}

func (s *statements) close() {
	for _, stmt := range []*sql.Stmt{s.insertEvent, s.insertTransfer, s.maxEventSeq, s.maxTransferSeq} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

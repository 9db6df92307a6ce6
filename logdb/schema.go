// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// seq packs the round and the index within the round; see sequence.
const (
	eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	callID BLOB NOT NULL,
	sender BLOB NOT NULL,
	app INTEGER NOT NULL,
	name TEXT NOT NULL,
	data BLOB
);
CREATE INDEX IF NOT EXISTS event_app ON event(app, seq);
CREATE INDEX IF NOT EXISTS event_name ON event(name, seq);
CREATE INDEX IF NOT EXISTS event_call ON event(callID);
`

	transferTableSchema = `CREATE TABLE IF NOT EXISTS transfer (
	seq INTEGER PRIMARY KEY NOT NULL,
	callID BLOB NOT NULL,
	sender BLOB NOT NULL,
	src BLOB NOT NULL,
	dst BLOB NOT NULL,
	asset INTEGER NOT NULL,
	amount BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS transfer_src ON transfer(src, seq);
CREATE INDEX IF NOT EXISTS transfer_dst ON transfer(dst, seq);
CREATE INDEX IF NOT EXISTS transfer_call ON transfer(callID);
`
)

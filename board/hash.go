// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package board

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"
)

// Blake2b returns the blake2b-256 digest of the concatenated data.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	return Blake2bFn(func(w io.Writer) {
		for _, b := range data {
			w.Write(b)
		}
	})
}

// Blake2bFn returns the blake2b-256 digest of whatever fn writes.
func Blake2bFn(fn func(w io.Writer)) (h Bytes32) {
	d, _ := blake2b.New256(nil)
	fn(d)
	d.Sum(h[:0])
	return
}

// RLPHash hashes the rlp encoding of v. Terms and templates are addressed by it.
func RLPHash(v any) (Bytes32, error) {
	var err error
	h := Blake2bFn(func(w io.Writer) {
		err = rlp.Encode(w, v)
	})
	return h, err
}

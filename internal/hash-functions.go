// estalign: aligning cDNA and EST reads to genomic sequences.
// Copyright (c) 2017-2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/estalign/blob/master/LICENSE.txt>.

package internal

import "github.com/zeebo/wyhash"

// StringHash returns a hash value for the given string value.
func StringHash(s string) uint64 {
	return wyhash.HashString(s, 0)
}

// KeyHash combines a string with a small tag, for keys that name the
// same identifier in different tables.
func KeyHash(tag uint8, s string) uint64 {
	return wyhash.HashString(s, uint64(tag)+1)
}

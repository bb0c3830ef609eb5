// Copyright 2025 The keyring-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cipher

// Stats are per-direction usage counters. They are advisory, not persisted,
// and only updated after an operation succeeds.
type Stats struct {
	UseCount       uint32
	MinByteCount   uint64
	MaxByteCount   uint64
	TotalByteCount uint64
}

// update records one operation over byteCount bytes. The first observation
// seeds both minimum and maximum.
func (s *Stats) update(byteCount int) {
	bc := uint64(byteCount)
	s.UseCount++
	if s.UseCount == 1 {
		s.MinByteCount = bc
		s.MaxByteCount = bc
	} else {
		if bc < s.MinByteCount {
			s.MinByteCount = bc
		}
		if bc > s.MaxByteCount {
			s.MaxByteCount = bc
		}
	}
	s.TotalByteCount += bc
}

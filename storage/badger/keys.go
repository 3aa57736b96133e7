// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

// keyPrefix namespaces client keys so the database can host other data later.
const keyPrefix = "sfkv:"

// makeKey generates the database key for a store key.
func makeKey(key string) []byte {
	buf := make([]byte, len(keyPrefix)+len(key))
	offset := copy(buf, keyPrefix)
	copy(buf[offset:], key)
	return buf
}

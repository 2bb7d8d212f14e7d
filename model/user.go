// Licensed to the Faultline project under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. The Faultline project licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package model

// User describes the user associated with a capture.
type User struct {
	ID        string
	Email     string
	Username  string
	IPAddress string
	Segment   string

	// Data holds free-form user attributes.
	Data map[string]string
}

// IsEmpty reports whether no user information is set.
func (u User) IsEmpty() bool {
	return u.ID == "" && u.Email == "" && u.Username == "" &&
		u.IPAddress == "" && u.Segment == "" && len(u.Data) == 0
}

func (u User) clone() User {
	out := u
	if u.Data != nil {
		out.Data = make(map[string]string, len(u.Data))
		for k, v := range u.Data {
			out.Data[k] = v
		}
	}
	return out
}

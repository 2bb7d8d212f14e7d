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

// Level is the severity of an event or breadcrumb.
type Level string

// Severity levels, in ascending order.
const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

var levelOrder = map[Level]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
	LevelFatal:   4,
}

// AtLeast reports whether l is at least as severe as min. Unknown
// levels compare as LevelInfo.
func (l Level) AtLeast(min Level) bool {
	return rank(l) >= rank(min)
}

func rank(l Level) int {
	if r, ok := levelOrder[l]; ok {
		return r
	}
	return levelOrder[LevelInfo]
}

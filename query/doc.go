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

// Package query turns a raw question into a structured Intent.
//
// Classification is purely lexical. A small ordered rule list decides
// between four intents:
//
//	show [all] logs [for k=v ...]      -> IntentShowAllLogs
//	list unique <field>                -> IntentListUnique
//	list|show|find <fields> [where ..] -> IntentStructuredList
//	anything else                      -> IntentSemantic
//
// Short field names such as "ward" or "deviceid" are resolved to canonical
// document paths through a fixed alias table. Filter values become
// core.Predicate values: identifier fields match exactly, everything else
// matches case-insensitively.
package query

// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

// Package contract validates that an assembled CodeGraph satisfies its
// structural invariants: id uniqueness, edge closure, status/color
// consistency, cluster coverage, and stats correctness.
//
//	result := contract.ValidateGraph(assembled)
//	if !result.OK {
//	    return errors.NewInvariantViolated(result.Message)
//	}
//
// This is the assembler's last-line defense, run once per analysis after
// every other component has already contributed its piece of the
// artifact. A failure here indicates an internal bug, not a user mistake.
package contract

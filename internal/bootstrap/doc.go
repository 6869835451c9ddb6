// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bootstrap resolves the run-level state an analysis needs before
// extraction starts.
//
// ProjectRoot validates and absolutizes the configured project root.
// HelperCache resolves and memoizes the path of out-of-process helper
// executables used by the typed extraction path (§6.3), so a run only
// pays the exec.LookPath cost once per helper name:
//
//	root, err := bootstrap.ProjectRoot(cfg.ProjectRoot)
//	if err != nil {
//	    errors.FatalError(err, cfg.JSON)
//	}
//
//	helpers := bootstrap.NewHelperCache()
//	path, err := helpers.Resolve("graphmap-go-helper", logger)
//	if err != nil {
//	    // fall back to the AST-only extraction path
//	}
//
// Neither ProjectRoot nor HelperCache is a package-level singleton; both
// are constructed once per run and passed down explicitly.
package bootstrap

// Copyright 2025 Quarry Labs
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


// Package crawler implements a bounded breadth-first web crawler.
//
// A crawl starts from one URL and follows only links on the exact same
// hostname, visiting each URL at most once and stopping after maxPages
// successfully fetched pages. Page fetches within a crawl run concurrently
// through a fixed-size worker pool, but the frontier is processed in waves so
// the traversal remains breadth-first and the set of visited URLs is
// deterministic for a fixed link graph.
//
// Per-page failures (network errors, malformed HTML) are logged and skipped;
// they never abort the traversal. Cancelling the context returns the pages
// collected so far.
package crawler

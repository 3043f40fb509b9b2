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

// Package compose turns a user utterance into the final response text.
//
// One turn runs through these steps:
//
//  1. Compound utterances are split into sub-questions and each is looked up
//     separately (top-1 each). Their answers are combined.
//  2. Otherwise the top candidates are retrieved and the best score picks a
//     tier. HIGH asks the generator to paraphrase the best answer, MEDIUM asks
//     it to rephrase only, and LOW skips the generator and asks the user to
//     pick one of the candidate questions.
//  3. Generated text is accepted only if it contains the canonical answer of
//     a retrieved entry verbatim. Otherwise the canonical answer is returned
//     as is.
//  4. The turn is recorded in the user's session context.
//
// Generator failures never surface to the caller. A timeout, an error or a
// missing generator all resolve to the canonical answer, and every outcome is
// reported through the Response.
package compose

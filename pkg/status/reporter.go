// Copyright 2025 Ivan Blazhko
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

package status

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// 📢 Reporter renders one file result as it happens.
type Reporter interface {
	Report(result FileResult)
}

// 🖥️ ConsoleReporter prints per-file feedback with pterm prefix printers.
type ConsoleReporter struct {
	mu sync.Mutex
}

// 🏭 NewConsoleReporter creates a console reporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// Report prints one file result.
func (r *ConsoleReporter) Report(result FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var printer *pterm.PrefixPrinter
	switch result.Outcome {
	case OutcomeRenamed, OutcomeExported, OutcomeLinked:
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: "✨"})
	case OutcomeRemoved:
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: "🗑️"})
	case OutcomeSkipped:
		printer = pterm.Warning.WithPrefix(pterm.Prefix{Text: "⏭️"})
	case OutcomeFailed:
		printer = pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"})
	default:
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: "ℹ️"})
	}

	msg := fmt.Sprintf("%s %s", capitalize(result.Outcome.String()), result.Path)
	if result.Detail != "" {
		msg += fmt.Sprintf(" (%s)", result.Detail)
	}
	printer.Println(msg)
	if result.Err != nil {
		pterm.Error.Println(result.Err)
	}
}

// 📝 FormatSummary renders the end-of-batch summary as one colored line.
func FormatSummary(s Summary) string {
	parts := []string{fmt.Sprintf("%d %s", s.Total, pluralize("file", s.Total))}
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(s.Renamed, "renamed")
	add(s.Exported, "exported")
	add(s.Linked, "linked")
	add(s.Removed, "removed")
	add(s.Skipped, "skipped")
	add(s.Failed, "failed")

	line := strings.Join(parts, ", ")
	if s.Failed > 0 {
		return color.RedString("Done with failures: %s", line)
	}
	return color.GreenString("Done: %s", line)
}

func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

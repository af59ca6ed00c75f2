/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/track-recommender/internal/catalog"
	"github.com/ademuri/track-recommender/internal/recommend"
	"github.com/ademuri/track-recommender/internal/store"
	"github.com/ademuri/track-recommender/internal/track"
)

// Table is the rendered output of a command: a header row, body rows and
// a one-line summary.
type Table struct {
	results [][]string
	summary string
}

func (t Table) String() string {
	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.Header(t.results[0])
	for _, row := range t.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	fmt.Fprintf(out, "%s\n", t.summary)
	return out.String()
}

func searchTable(results []catalog.TrackSummary) Table {
	rows := [][]string{{"#", "ID", "Name", "Artist", "Album"}}
	for i, r := range results {
		rows = append(rows, []string{strconv.Itoa(i + 1), r.ID, r.Name, r.Artist, r.Album})
	}
	return Table{results: rows, summary: fmt.Sprintf("%d tracks found", len(results))}
}

func recommendationTable(recs []recommend.Recommendation, method recommend.Method) Table {
	rows := [][]string{{"#", "ID", "Name", "Artist", "Score"}}
	for i, r := range recs {
		score := r.Distance
		if method == recommend.MethodSequence {
			score = r.Score
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), r.ID, r.Name, r.Artist, strconv.FormatFloat(score, 'f', 4, 64)})
	}
	return Table{results: rows, summary: fmt.Sprintf("%d recommendations (%s)", len(recs), method)}
}

func trackTable(tracks []track.Track) Table {
	rows := [][]string{{"ID", "Name", "Artist", "Album", "Preference", "Added"}}
	prefs := 0
	for _, t := range tracks {
		if t.Preference {
			prefs++
		}
		rows = append(rows, []string{t.ID, t.Name, t.Artist, t.Album, strconv.FormatBool(t.Preference), t.AddedAt.Format("2006-01-02 15:04")})
	}
	return Table{results: rows, summary: fmt.Sprintf("%d tracks, %d preferences", len(tracks), prefs)}
}

func runTable(runs []store.Run) Table {
	rows := [][]string{{"ID", "Started", "Duration", "Requested", "Stored", "Skipped", "Pages", "Partial"}}
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.Started.Format("2006-01-02 15:04"),
			r.Finished.Sub(r.Started).Round(time.Millisecond).String(),
			strconv.Itoa(r.Requested),
			strconv.Itoa(r.Stored),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Pages),
			strconv.FormatBool(r.Partial),
		})
	}
	return Table{results: rows, summary: fmt.Sprintf("%d runs", len(runs))}
}

package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `edgeline imports Edge device recordings, lets you mark drills and match periods on them, and generates per-player reports.

Core concepts:
- Edge session: a raw recording on the device (start/end in epoch ms, activity graph, per-tag load).
- Workspace: the editing state of one imported recording. All editing tools take workspace_id.
- Full session: the envelope of the recording that is reported. Trim it while unlocked; lock it to start marking drills.
- Period / drill: marked intervals inside the full session. Only locked (confirmed) segments are reported.
- Tag: a hardware sensor worn by a player. Assign tags to roster players and include them in the report.

Default workflow:
1) list_edge_sessions, then setup_edge_session (kind, sport, opponent/scores or training_category).
2) trim_full_session if needed, then lock_full_session.
3) mark_drill / update_segment / lock_segment for every drill; for matches set and lock the periods.
4) player_choices + assign_player for tags that were not matched automatically.
5) generate_report, then report_status with wait_seconds until done. cancel_report stops it.

Errors come back as {code, message, recovery_hint}. Docs:
- edgeline://docs/index
- edgeline://docs/segments
- edgeline://docs/reports
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "edgeline://docs/index",
		Name:        "docs_index",
		Title:       "edgeline docs index",
		Description: "Entry point: what exists and what to read when.",
		Content: `# edgeline: Agent Docs Index

## Quick start

1. ` + "`list_edge_sessions`" + ` to find the recording.
2. ` + "`setup_edge_session`" + ` to create a workspace.
3. Lock the full session, mark and lock drills or periods.
4. Map tags to players.
5. ` + "`generate_report`" + ` and poll ` + "`report_status`" + `.

## Docs

- ` + "`edgeline://docs/segments`" + `: segment editing rules and bounds.
- ` + "`edgeline://docs/reports`" + `: report generation lifecycle and failure modes.
`,
	},
	{
		URI:         "edgeline://docs/segments",
		Name:        "docs_segments",
		Title:       "Segment editing rules",
		Description: "Bounds, locking and drill marking rules for periods and drills.",
		Content: `# Segment editing rules

All timestamps are epoch milliseconds; the edit granularity is one minute.

- While the full session is unlocked, editing a segment beyond the envelope grows it.
- Locking the full session pins it to the earliest segment start and latest segment end
  (or keeps the current bounds when nothing is marked). Later edits never move it.
- A drill can only be appended while the full session is locked and at least one minute
  remains after the last segment end. New drills start at that end.
- Every segment view carries ` + "`bounds`" + `: start_min, start_max, end_min, end_max.
  A segment is disabled while its predecessor has no end.
- Locked segments cannot be edited; unlock with ` + "`lock_segment`" + ` locked=false.
- Seeded match periods cannot be deleted; drills and added periods can.
`,
	},
	{
		URI:         "edgeline://docs/reports",
		Name:        "docs_reports",
		Title:       "Report generation",
		Description: "Lifecycle of a report attempt: validation, polling, cancellation and merge.",
		Content: `# Report generation

` + "`generate_report`" + ` validates the workspace first:
- matches need an opponent and both scores,
- trainings need a training category,
- at least one locked period or drill.

The attempt then runs in the background:
building → submitting → polling → complete | cancelled | failed | timed_out.

- The device answers "Report not found" while it is still working; the job is polled
  every few seconds with the game id it assigned.
- Polling gives up after a bounded number of polls (timed_out) or repeated network
  failures (failed).
- ` + "`cancel_report`" + ` stops polling and asks the device to cancel the job. An event that
  was created for this attempt is deleted again.
- On completion the stats are merged into the event with player tags translated to
  roster tags, and the locked segments are stored on the event.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}

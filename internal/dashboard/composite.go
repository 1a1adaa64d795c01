package dashboard

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/smartassist-backend/internal/domain"
)

// All disables a filter dimension.
const All = "all"

// Inputs are the independently fetched collections a view is joined from.
type Inputs struct {
	Profiles     []*types.Profile
	Tutorials    []*types.Tutorial
	Progress     []*types.Progress
	LatestCode   []*types.CodeLog
	HelpRequests []*types.HelpRequest
}

// StudentRow is the composite record for one student.
type StudentRow struct {
	Student      *types.Profile       `json:"student"`
	Progress     *types.Progress      `json:"progress"`
	Tutorial     *types.Tutorial      `json:"tutorial"`
	LatestCode   *types.CodeLog       `json:"latest_code"`
	HelpRequests []*types.HelpRequest `json:"help_requests"`
}

type Summary struct {
	TotalStudents int `json:"total_students"`
	ActiveCoders  int `json:"active_coders"`
	PendingHelp   int `json:"pending_help"`
	// AverageCompletion is a percentage over students that have both a
	// progress row and a resolvable tutorial.
	AverageCompletion float64 `json:"average_completion"`
}

type View struct {
	Students []StudentRow `json:"students"`
	Summary  Summary      `json:"summary"`
	BuiltAt  time.Time    `json:"built_at"`
	// Stale is set when the most recent rebuild failed and this is the
	// last good view.
	Stale bool `json:"stale"`
}

// BuildComposite joins in into one row per student profile. It does no I/O.
// When a student has progress in several tutorials the most recently
// updated row wins.
func BuildComposite(in Inputs) []StudentRow {
	tutorials := make(map[uuid.UUID]*types.Tutorial, len(in.Tutorials))
	for _, t := range in.Tutorials {
		if t != nil {
			tutorials[t.ID] = t
		}
	}
	progress := make(map[uuid.UUID]*types.Progress, len(in.Progress))
	for _, p := range in.Progress {
		if p == nil {
			continue
		}
		if cur, ok := progress[p.StudentID]; !ok || p.UpdatedAt.After(cur.UpdatedAt) {
			progress[p.StudentID] = p
		}
	}
	latest := make(map[uuid.UUID]*types.CodeLog, len(in.LatestCode))
	for _, c := range in.LatestCode {
		if c == nil {
			continue
		}
		if cur, ok := latest[c.StudentID]; !ok || c.Timestamp.After(cur.Timestamp) {
			latest[c.StudentID] = c
		}
	}
	help := make(map[uuid.UUID][]*types.HelpRequest)
	for _, h := range in.HelpRequests {
		if h != nil {
			help[h.StudentID] = append(help[h.StudentID], h)
		}
	}

	rows := make([]StudentRow, 0, len(in.Profiles))
	for _, prof := range in.Profiles {
		if prof == nil || prof.UserType != types.UserTypeStudent {
			continue
		}
		row := StudentRow{
			Student:      prof,
			Progress:     progress[prof.UserID],
			LatestCode:   latest[prof.UserID],
			HelpRequests: help[prof.UserID],
		}
		if row.HelpRequests == nil {
			row.HelpRequests = []*types.HelpRequest{}
		}
		if row.Progress != nil {
			row.Tutorial = tutorials[row.Progress.TutorialID]
		}
		rows = append(rows, row)
	}
	return rows
}

func Summarize(rows []StudentRow) Summary {
	s := Summary{TotalStudents: len(rows)}
	var total float64
	var counted int
	for _, r := range rows {
		if r.LatestCode != nil {
			s.ActiveCoders++
		}
		for _, h := range r.HelpRequests {
			if h.Unanswered() {
				s.PendingHelp++
			}
		}
		if r.Progress == nil || r.Tutorial == nil || r.Tutorial.StepCount() == 0 {
			continue
		}
		total += float64(r.Progress.CurrentStep+1) / float64(r.Tutorial.StepCount())
		counted++
	}
	if counted > 0 {
		s.AverageCompletion = total / float64(counted) * 100
	}
	return s
}

// Filter keeps rows whose progress matches tutorial (id or code) and step.
// Empty or All leaves a dimension unfiltered. Students without progress
// never match an active filter.
func Filter(rows []StudentRow, tutorial, step string) []StudentRow {
	byTutorial := tutorial != "" && tutorial != All
	byStep := step != "" && step != All
	if !byTutorial && !byStep {
		return rows
	}
	out := make([]StudentRow, 0, len(rows))
	for _, r := range rows {
		if r.Progress == nil {
			continue
		}
		if byTutorial && r.Progress.TutorialID.String() != tutorial &&
			(r.Tutorial == nil || r.Tutorial.TutorialID != tutorial) {
			continue
		}
		if byStep && strconv.Itoa(r.Progress.CurrentStep) != step {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Filtered returns a copy of v with its student list narrowed. The summary
// still covers every student.
func (v *View) Filtered(tutorial, step string) *View {
	if v == nil {
		return nil
	}
	cp := *v
	cp.Students = Filter(v.Students, tutorial, step)
	return &cp
}

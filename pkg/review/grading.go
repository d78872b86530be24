package review

import (
	"github.com/alantheprice/canvasreview/pkg/session"
	"github.com/alantheprice/canvasreview/pkg/spec"
)

// gradePillars classifies each pillar's check outcomes (pass, a
// non-blocking "attention" issue, or a blocking issue) and assigns a
// letter grade, per spec.md §4.2 step 6.
func gradePillars(sp *spec.Spec, issues []session.Issue) map[string]session.PillarGrade {
	issuesByCheck := make(map[string][]session.Issue)
	for _, iss := range issues {
		issuesByCheck[iss.CheckID] = append(issuesByCheck[iss.CheckID], iss)
	}

	grades := make(map[string]session.PillarGrade, len(sp.Pillars))
	for _, pillar := range sp.Pillars {
		var passing, attention, blocking int
		anyBlocking := false
		anyMajor := false

		for _, check := range pillar.Checks {
			checkIssues := issuesByCheck[check.ID]
			if len(checkIssues) == 0 {
				passing++
				continue
			}
			switch check.Severity {
			case spec.SeverityBlocking:
				blocking++
				anyBlocking = true
			default:
				attention++
				if check.Severity == spec.SeverityMajor {
					anyMajor = true
				}
			}
		}

		grade := "A"
		switch {
		case anyBlocking:
			grade = "F"
		case anyMajor:
			grade = "C"
		case attention == 0 && blocking == 0:
			grade = "A"
		default:
			grade = "B"
		}

		grades[pillar.Name] = session.PillarGrade{
			Grade:     grade,
			Passing:   passing,
			Attention: attention,
			Blocking:  blocking,
		}
	}
	return grades
}

// summarize tallies the session-wide issue counts by severity, plus
// the total number of checks that raised no issue across all pillars.
func summarize(issues []session.Issue, pillarGrades map[string]session.PillarGrade) session.Summary {
	var s session.Summary
	for _, iss := range issues {
		switch iss.Severity {
		case "blocking":
			s.Blocking++
		case "major":
			s.Major++
		case "minor":
			s.Minor++
		}
	}
	for _, grade := range pillarGrades {
		s.Passing += grade.Passing
	}
	return s
}

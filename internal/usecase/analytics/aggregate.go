package analytics

import (
	"sort"
	"time"

	"bonafide-backend/internal/domain/certificate"
	"bonafide-backend/internal/domain/profile"
)

type Stat struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value int64  `json:"value"`
}

type Point struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Chart always carries every bucket; Empty is set when all values are 0.
type Chart struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Kind   string  `json:"kind"`
	Points []Point `json:"points"`
	Empty  bool    `json:"empty"`
}

const UnknownDepartment = "Unknown"

type counts struct {
	total    int64
	byStatus map[certificate.Status]int64
	byMonth  [12]int64
	byDept   map[string]int64
}

// tally is the single pass every stat and chart is derived from.
func tally(reqs []certificate.View) counts {
	c := counts{byStatus: map[certificate.Status]int64{}, byDept: map[string]int64{}}
	for i := range reqs {
		r := &reqs[i]
		c.total++
		c.byStatus[r.Status]++
		c.byMonth[r.CreatedAt.Month()-1]++
		dept := UnknownDepartment
		if r.Department != nil && *r.Department != "" {
			dept = *r.Department
		}
		c.byDept[dept]++
	}
	return c
}

// ComputeStats returns the fixed stat set of role. totalUsers only shows for admins.
func ComputeStats(reqs []certificate.View, role profile.Role, totalUsers int64) []Stat {
	c := tally(reqs)
	s := c.byStatus
	switch role {
	case profile.RoleTutor:
		return []Stat{
			{"total", "Total requests", c.total},
			{"pending", "Pending review", s[certificate.StatusPending]},
			{"approved", "Approved", s[certificate.StatusApprovedByTutor]},
			{"rejected", "Rejected", s[certificate.StatusRejectedByTutor]},
		}
	case profile.RoleHOD:
		return []Stat{
			{"total", "Total requests", c.total},
			{"pending", "Pending review", s[certificate.StatusApprovedByTutor]},
			{"approved", "Approved", s[certificate.StatusApprovedByHOD]},
			{"rejected", "Rejected", s[certificate.StatusRejectedByHOD]},
		}
	case profile.RoleAdmin:
		return []Stat{
			{"users", "Total users", totalUsers},
			{"total", "Total requests", c.total},
			{"pending", "Pending issue", s[certificate.StatusApprovedByHOD]},
			{"completed", "Completed", s[certificate.StatusCompleted]},
			{"rejected", "Rejected", s[certificate.StatusRejectedByTutor] + s[certificate.StatusRejectedByHOD]},
		}
	}
	return []Stat{
		{"total", "My requests", c.total},
		{"in_progress", "In progress", s[certificate.StatusPending] + s[certificate.StatusApprovedByTutor] + s[certificate.StatusApprovedByHOD]},
		{"completed", "Completed", s[certificate.StatusCompleted]},
		{"rejected", "Rejected", s[certificate.StatusRejectedByTutor] + s[certificate.StatusRejectedByHOD]},
	}
}

// ComputeCharts returns the monthly chart for everyone, department and role
// distributions for admins and a three-slice status chart for tutors and HODs.
func ComputeCharts(reqs []certificate.View, role profile.Role, users []profile.Profile) []Chart {
	c := tally(reqs)

	monthly := make([]Point, 12)
	for m := 0; m < 12; m++ {
		monthly[m] = Point{Label: time.Month(m + 1).String()[:3], Value: c.byMonth[m]}
	}
	charts := []Chart{newChart("monthly", "Requests per month", "bar", monthly)}

	switch role {
	case profile.RoleAdmin:
		charts = append(charts,
			newChart("departments", "Requests by department", "bar", departmentPoints(c.byDept)),
			newChart("roles", "Users by role", "pie", rolePoints(users)))
	case profile.RoleTutor:
		charts = append(charts, newChart("status", "Request status", "pie", []Point{
			{"Pending", c.byStatus[certificate.StatusPending]},
			{"Approved", c.byStatus[certificate.StatusApprovedByTutor]},
			{"Rejected", c.byStatus[certificate.StatusRejectedByTutor]},
		}))
	case profile.RoleHOD:
		charts = append(charts, newChart("status", "Request status", "pie", []Point{
			{"Pending", c.byStatus[certificate.StatusApprovedByTutor]},
			{"Approved", c.byStatus[certificate.StatusApprovedByHOD]},
			{"Rejected", c.byStatus[certificate.StatusRejectedByHOD]},
		}))
	}
	return charts
}

func newChart(key, title, kind string, points []Point) Chart {
	empty := true
	for _, p := range points {
		if p.Value != 0 {
			empty = false
			break
		}
	}
	return Chart{Key: key, Title: title, Kind: kind, Points: points, Empty: empty}
}

func departmentPoints(byDept map[string]int64) []Point {
	out := make([]Point, 0, len(byDept))
	for d, n := range byDept {
		out = append(out, Point{Label: d, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func rolePoints(users []profile.Profile) []Point {
	byRole := map[profile.Role]int64{}
	for _, u := range users {
		byRole[u.Role]++
	}
	out := make([]Point, 0, len(profile.Roles))
	for _, r := range profile.Roles {
		out = append(out, Point{Label: string(r), Value: byRole[r]})
	}
	return out
}

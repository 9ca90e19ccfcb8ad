// Package report produces the operator summaries printed by scholarctl. It
// reads through database/sql so it can run against a read replica without
// the gorm models.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// StatusCount is the number of records of one organization in one status.
type StatusCount struct {
	Organization string
	Status       string
	Count        int64
}

const applicationsByStatus = `
SELECT o.display_name, a.status, COUNT(*)
FROM applications a
JOIN partner_organizations o ON o.id = a.partner_org_id
GROUP BY o.display_name, a.status
ORDER BY o.display_name, a.status`

const moaByStatus = `
SELECT o.display_name, m.status, COUNT(*)
FROM moa_submissions m
JOIN approved_applicants aa ON aa.id = m.approved_applicant_id
JOIN applications a ON a.id = aa.application_id
JOIN partner_organizations o ON o.id = a.partner_org_id
GROUP BY o.display_name, m.status
ORDER BY o.display_name, m.status`

const scholarsByState = `
SELECT o.display_name,
       CASE WHEN s.is_active THEN 'ACTIVE' ELSE 'INACTIVE' END,
       COUNT(*)
FROM scholars s
JOIN partner_organizations o ON o.id = s.partner_org_id
GROUP BY o.display_name, s.is_active
ORDER BY o.display_name, s.is_active DESC`

func ApplicationsByStatus(ctx context.Context, db *sql.DB) ([]StatusCount, error) {
	return statusCounts(ctx, db, applicationsByStatus)
}

func MoAByStatus(ctx context.Context, db *sql.DB) ([]StatusCount, error) {
	return statusCounts(ctx, db, moaByStatus)
}

func ScholarsByState(ctx context.Context, db *sql.DB) ([]StatusCount, error) {
	return statusCounts(ctx, db, scholarsByState)
}

func statusCounts(ctx context.Context, db *sql.DB, query string) ([]StatusCount, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying report: %w", err)
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Organization, &c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Render prints counts as a table with a per-organization total row.
func Render(w io.Writer, title string, counts []StatusCount) {
	fmt.Fprintln(w, color.YellowString("\n%s", title))

	if len(counts) == 0 {
		fmt.Fprintln(w, "No records.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Organization", "Status", "Count"})
	table.SetAutoMergeCellsByColumnIndex([]int{0})

	var (
		total    int64
		orgTotal int64
	)
	for i, c := range counts {
		table.Append([]string{c.Organization, c.Status, strconv.FormatInt(c.Count, 10)})
		orgTotal += c.Count
		total += c.Count

		last := i == len(counts)-1 || counts[i+1].Organization != c.Organization
		if last {
			table.Append([]string{c.Organization, "TOTAL", strconv.FormatInt(orgTotal, 10)})
			orgTotal = 0
		}
	}
	table.SetFooter([]string{"", "ALL", strconv.FormatInt(total, 10)})
	table.Render()
}

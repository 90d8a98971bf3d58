package billing

// StatusTotal aggregates the invoices of one status.
type StatusTotal struct {
	Status             Status  `json:"status"`
	InvoiceCount       int     `json:"invoice_count"`
	DistinctUsers      int     `json:"distinct_users"`
	DistinctProperties int     `json:"distinct_properties"`
	DistinctLots       int     `json:"distinct_lots"`
	AmountSum          float64 `json:"amount_sum"`
}

// Summary is the per-status breakdown plus the grand total.
type Summary struct {
	ByStatus []StatusTotal `json:"by_status"`
	Grand    StatusTotal   `json:"grand"`
	// Unknown counts invoices excluded because of an unrecognised status.
	Unknown int `json:"unknown"`
}

// Lookup returns the total for status, if present.
func (s Summary) Lookup(status Status) (StatusTotal, bool) {
	for _, total := range s.ByStatus {
		if total.Status == status {
			return total, true
		}
	}
	return StatusTotal{}, false
}

type tally struct {
	total      StatusTotal
	users      map[string]struct{}
	properties map[string]struct{}
	lots       map[string]struct{}
}

func newTally(status Status) *tally {
	return &tally{
		total:      StatusTotal{Status: status},
		users:      make(map[string]struct{}),
		properties: make(map[string]struct{}),
		lots:       make(map[string]struct{}),
	}
}

func (t *tally) add(inv Invoice, rowIndex int) {
	t.total.InvoiceCount++
	t.total.AmountSum += inv.Amount()
	t.users[UserKey(inv, rowIndex)] = struct{}{}
	t.properties[PropertyKey(inv, rowIndex)] = struct{}{}
	t.lots[LotKey(inv, rowIndex)] = struct{}{}
}

func (t *tally) result() StatusTotal {
	out := t.total
	out.DistinctUsers = len(t.users)
	out.DistinctProperties = len(t.properties)
	out.DistinctLots = len(t.lots)
	return out
}

// Summarize totals invoices per known status. Statuses outside the four
// known values are left out of every total, including the grand total.
// The grand total counts distinct users, properties and lots across the
// whole set, so an entity under two statuses is counted once.
func Summarize(invoices []Invoice) Summary {
	byStatus := make(map[Status]*tally, len(KnownStatuses))
	grand := newTally("total")
	var summary Summary

	for i, inv := range invoices {
		status, ok := NormalizeStatus(inv.Status)
		if !ok {
			summary.Unknown++
			continue
		}
		t := byStatus[status]
		if t == nil {
			t = newTally(status)
			byStatus[status] = t
		}
		t.add(inv, i)
		grand.add(inv, i)
	}

	for _, status := range KnownStatuses {
		if t := byStatus[status]; t != nil {
			summary.ByStatus = append(summary.ByStatus, t.result())
		}
	}
	summary.Grand = grand.result()
	return summary
}

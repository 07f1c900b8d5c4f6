package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/javiermolinar/vendas/internal/sales"
)

// ForRole returns the classifier for role. The roster is only consulted
// for supervisors, to map a sale's owner to its supervisor.
func ForRole(role sales.Role, roster []*sales.Actor) Classifier {
	switch role {
	case sales.RoleSDR:
		return SDRMeetings
	case sales.RoleSupervisor:
		return SupervisorSales(roster)
	default:
		return SalespersonSales
	}
}

// SDRMeetings counts meetings for the SDR who booked them. A meeting
// converts when it produced a sale; only converted meetings carry value,
// the linked sale amount.
func SDRMeetings(r *sales.Record) (Classification, bool) {
	if !r.IsMeeting() || r.Outcome == sales.OutcomeCancelled {
		return Classification{}, false
	}
	c := Classification{ActorID: r.ActorID, Value: decimal.Zero}
	if r.IsConvertedMeeting() {
		c.Converted = true
		c.Value = r.Value
	}
	return c, true
}

// SalespersonSales counts sales for the salesperson who closed them.
// Only approved sales convert and contribute value.
func SalespersonSales(r *sales.Record) (Classification, bool) {
	if !r.IsSale() {
		return Classification{}, false
	}
	return saleClassification(r.ActorID, r), true
}

// SupervisorSales counts sales for the supervisor of the salesperson who
// closed them. Sales by salespeople without a supervisor are dropped.
func SupervisorSales(roster []*sales.Actor) Classifier {
	supervisorOf := make(map[string]string, len(roster))
	for _, a := range roster {
		if a.SupervisorID != nil {
			supervisorOf[a.ID] = *a.SupervisorID
		}
	}
	return func(r *sales.Record) (Classification, bool) {
		if !r.IsSale() {
			return Classification{}, false
		}
		sup, ok := supervisorOf[r.ActorID]
		if !ok {
			return Classification{}, false
		}
		return saleClassification(sup, r), true
	}
}

func saleClassification(actorID string, r *sales.Record) Classification {
	c := Classification{ActorID: actorID, Value: decimal.Zero}
	if r.IsApprovedSale() {
		c.Converted = true
		c.Value = r.Value
	}
	return c
}

// OwnerIDs returns the actor IDs whose records must be fetched to
// aggregate role over the given roster. Supervisors need their team's
// records, the other roles their own.
func OwnerIDs(role sales.Role, roster []*sales.Actor) []string {
	if role != sales.RoleSupervisor {
		var ids []string
		for _, a := range roster {
			if a.Role == role {
				ids = append(ids, a.ID)
			}
		}
		return ids
	}

	var ids []string
	for _, a := range roster {
		if a.Role != sales.RoleSupervisor && a.SupervisorID != nil {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

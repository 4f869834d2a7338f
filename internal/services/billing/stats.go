package billing

import "github.com/magabrotheeeer/wifinet-dashboard/internal/models"

// PlanUsage число активных абонентов на тарифе.
type PlanUsage struct {
	PlanID            string `json:"planId"`
	PlanName          string `json:"name"`
	ActiveSubscribers int    `json:"users"`
}

// Summary сводка для главной страницы дашборда.
type Summary struct {
	TotalRevenue      float64     `json:"totalRevenue"`
	ActiveSubscribers int         `json:"activeSubscribers"`
	PlanCount         int         `json:"planCount"`
	PerPlan           []PlanUsage `json:"perPlan"`
}

// Stats считает выручку по всем платежам, число активных абонентов,
// число тарифов и активных абонентов на каждом тарифе в порядке тарифов.
func Stats(snap models.Snapshot) Summary {
	s := Summary{
		PlanCount: len(snap.Plans),
		PerPlan:   make([]PlanUsage, len(snap.Plans)),
	}
	for _, p := range snap.Payments {
		s.TotalRevenue += p.Amount
	}

	index := make(map[string]int, len(snap.Plans))
	for i, p := range snap.Plans {
		s.PerPlan[i] = PlanUsage{PlanID: p.ID, PlanName: p.Name}
		index[p.ID] = i
	}
	for _, sub := range snap.Subscribers {
		if sub.Status != models.StatusActive {
			continue
		}
		s.ActiveSubscribers++
		if !sub.HasPlan() {
			continue
		}
		if i, ok := index[*sub.PlanID]; ok {
			s.PerPlan[i].ActiveSubscribers++
		}
	}
	return s
}

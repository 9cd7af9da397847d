package feed

// Summary resume o conjunto exibido (após filtro).
type Summary struct {
	BestEV      float64 `json:"best_ev"`
	AvgEV       float64 `json:"avg_ev"`
	TotalStake  float64 `json:"total_stake"`
	TotalReturn float64 `json:"total_return"` // retorno bruto, sem descontar a stake
}

// Aggregate calcula o resumo. Lista vazia resulta em tudo zero.
func Aggregate(items []Opportunity) Summary {
	if len(items) == 0 {
		return Summary{}
	}
	s := Summary{BestEV: items[0].EV}
	var sumEV float64
	for _, o := range items {
		if o.EV > s.BestEV {
			s.BestEV = o.EV
		}
		sumEV += o.EV
		s.TotalStake += o.Stake
		s.TotalReturn += o.PotentialReturn
	}
	s.AvgEV = sumEV / float64(len(items))
	return s
}

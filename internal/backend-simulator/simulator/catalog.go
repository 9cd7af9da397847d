package simulator

// Template é uma seleção do catálogo fixo. A probabilidade é a do "modelo";
// a odd oferecida é sorteada em volta da odd justa a cada chamada.
type Template struct {
	Match       string
	Competition string
	Market      string
	Bookmaker   string
	Sport       string
	Probability float64
}

// Catalog mistura rótulos de esporte como o backend real faz
// ("Football", "Soccer", "NFL", "Tennis" e alguns fora das abas).
var Catalog = []Template{
	{"Flamengo vs Palmeiras", "Brasileirão Série A", "1X2 - Casa", "Bet365", "Football", 0.52},
	{"Grêmio vs Internacional", "Brasileirão Série A", "Ambas Marcam - Sim", "Betfair", "Football", 0.58},
	{"Corinthians vs Santos", "Copa do Brasil", "Under 2.5", "Pinnacle", "Soccer", 0.61},
	{"São Paulo vs Vasco", "Brasileirão Série A", "1X2 - Empate", "Betano", "Football", 0.31},
	{"Arsenal vs Chelsea", "Premier League", "Over 2.5", "Matchbook", "soccer", 0.55},
	{"Real Madrid vs Barcelona", "La Liga", "1X2 - Fora", "Bet365", "Football", 0.34},
	{"Chiefs vs Bills", "NFL", "Moneyline - Chiefs", "Pinnacle", "NFL", 0.57},
	{"Eagles vs Cowboys", "NFL", "Spread -3.5", "Betfair", "American Football", 0.49},
	{"Sinner vs Alcaraz", "ATP Finals", "Vencedor - Sinner", "Pinnacle", "Tennis", 0.47},
	{"Swiatek vs Sabalenka", "WTA Finals", "Total de games Over 21.5", "Bet365", "tennis", 0.53},
	{"Lakers vs Celtics", "NBA", "Moneyline - Celtics", "Betano", "Basketball", 0.62},
}

// PhaseRule define limites de uma fase de gestão de banca.
type PhaseRule struct {
	Phase       int
	Target      float64 // 0 = fase de consolidação, sem meta
	MinEV       float64
	MaxStakePct float64
	Kelly       float64
}

// Phases em ordem crescente de banca; a última é a consolidação.
var Phases = []PhaseRule{
	{Phase: 1, Target: 1000, MinEV: 8, MaxStakePct: 15, Kelly: 0.5},
	{Phase: 2, Target: 5000, MinEV: 9, MaxStakePct: 10, Kelly: 0.5},
	{Phase: 3, Target: 25000, MinEV: 10, MaxStakePct: 6, Kelly: 0.5},
	{Phase: 4, Target: 100000, MinEV: 12, MaxStakePct: 4, Kelly: 0.5},
	{Phase: 5, MinEV: 12, MaxStakePct: 1.5, Kelly: 0.25},
}

// PhaseFor devolve a regra vigente para a banca.
func PhaseFor(bankroll float64) PhaseRule {
	for _, p := range Phases {
		if p.Target == 0 || bankroll < p.Target {
			return p
		}
	}
	return Phases[len(Phases)-1]
}

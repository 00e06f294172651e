package sim

import "goLangClient/state"

// AIPlayerID is the scripted player that trades on the series' actions.
const AIPlayerID = "AI"

// Fund holds one player's cash and shares in the round's stock.
type Fund struct {
	Cash   float64
	Shares float64
}

func (f Fund) Value(price float64) float64 {
	return f.Cash + f.Shares*price
}

// AllIn converts all cash into shares. It fails when there is no cash.
func (f *Fund) AllIn(price float64) bool {
	if f.Cash <= 0 || price <= 0 {
		return false
	}
	f.Shares += f.Cash / price
	f.Cash = 0
	return true
}

// AllOut sells every share. It fails when there are no shares.
func (f *Fund) AllOut(price float64) bool {
	if f.Shares <= 0 || price <= 0 {
		return false
	}
	f.Cash += f.Shares * price
	f.Shares = 0
	return true
}

type Player struct {
	ID   string
	Fund Fund
}

func (p *Player) View(price float64) state.PlayerState {
	return state.PlayerState{
		PlayerID: p.ID,
		FundA: state.FundState{
			Cash:   p.Fund.Cash,
			Shares: p.Fund.Shares,
			Value:  p.Fund.Value(price),
		},
		Networth: p.Fund.Value(price),
	}
}

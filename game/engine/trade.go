package engine

import (
	"fmt"

	"github.com/wricardo/caravan-wars/game/world"
)

// Buy purchases amount of good at the player's current location for the
// cached price. Every precondition is checked before anything is mutated.
func (s *Simulation) Buy(playerID int, good world.Good, amount int) error {
	p, err := s.player(playerID)
	if err != nil {
		return err
	}
	if err := s.checkTrade(p, good, amount); err != nil {
		return err
	}

	loc := p.Location
	available := s.market.StockOf(loc, good)
	if available < amount {
		return s.fail(p.ID, ErrInsufficientStock, "Not enough goods in stock.")
	}
	cost := s.market.PriceOf(loc, good) * amount
	if p.Gold < cost {
		return s.fail(p.ID, ErrInsufficientGold, "Not enough gold.")
	}
	if p.CargoFree() < amount {
		return s.fail(p.ID, ErrInsufficientCargo, "Not enough cargo space.")
	}

	p.Gold -= cost
	p.Cargo[good] += amount
	s.market.adjustStock(loc, good, -amount)

	s.notify(NoteBought, p.ID, "[%s] bought %d %s for %d.", p.Name, amount, good.Name(), cost)
	return nil
}

// Sell sells amount of good from the player's cargo at the current location.
func (s *Simulation) Sell(playerID int, good world.Good, amount int) error {
	p, err := s.player(playerID)
	if err != nil {
		return err
	}
	if err := s.checkTrade(p, good, amount); err != nil {
		return err
	}

	have := p.Cargo[good]
	if have < amount {
		return s.fail(p.ID, ErrInsufficientCargo, "Not enough goods to sell.")
	}

	loc := p.Location
	revenue := s.market.PriceOf(loc, good) * amount
	p.Gold += revenue
	if have == amount {
		delete(p.Cargo, good)
	} else {
		p.Cargo[good] = have - amount
	}
	s.market.adjustStock(loc, good, amount)

	s.notify(NoteSold, p.ID, "[%s] sold %d %s for %d.", p.Name, amount, good.Name(), revenue)
	return nil
}

func (s *Simulation) checkTrade(p *Player, good world.Good, amount int) error {
	if p.Moving {
		return s.fail(p.ID, ErrInTransit, "[%s] cannot trade while traveling.", p.Name)
	}
	if !good.Valid() {
		return s.fail(p.ID, fmt.Errorf("%w: %d", world.ErrUnknownGood, int(good)), "Unknown good.")
	}
	if amount <= 0 {
		return s.fail(p.ID, ErrInvalidAmount, "Amount must be positive.")
	}
	return nil
}

package types

// Validate checks the fields every downstream component relies on.
// Bookmakers are not inspected here; use PruneBookmakers for per-book isolation.
func (g *Game) Validate() error {
	if g.ID == "" {
		return &InputError{Field: "id", Reason: "missing"}
	}
	if g.HomeTeam == "" {
		return &InputError{Record: g.ID, Field: "home_team", Reason: "missing"}
	}
	if g.AwayTeam == "" {
		return &InputError{Record: g.ID, Field: "away_team", Reason: "missing"}
	}
	if g.CommenceTime.IsZero() {
		return &InputError{Record: g.ID, Field: "commence_time", Reason: "missing"}
	}
	return nil
}

// Validate checks a bookmaker quote.
func (b *Bookmaker) Validate() error {
	if b.Key == "" {
		return &InputError{Field: "bookmaker.key", Reason: "missing"}
	}
	for i := range b.Markets {
		if b.Markets[i].Key == "" {
			return &InputError{Record: b.Key, Field: "market.key", Reason: "missing"}
		}
		for _, out := range b.Markets[i].Outcomes {
			if out.Name == "" {
				return &InputError{Record: b.Key, Field: "outcome.name", Reason: "missing"}
			}
		}
	}
	return nil
}

// PruneBookmakers drops invalid bookmaker quotes from the game and returns
// one error per dropped quote.
func (g *Game) PruneBookmakers() []error {
	var errs []error
	kept := g.Bookmakers[:0]
	for i := range g.Bookmakers {
		err := g.Bookmakers[i].Validate()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		kept = append(kept, g.Bookmakers[i])
	}
	g.Bookmakers = kept
	return errs
}
